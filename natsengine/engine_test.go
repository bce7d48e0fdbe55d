package natsengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/brokerconf/errors"
)

func TestNewNilConnection(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNoConnection)
}

func TestSubjectConstruction(t *testing.T) {
	e := &Engine{prefix: DefaultSubjectPrefix}

	assert.Equal(t, "$BROKER.CTL.START", e.subject("START"))
	assert.Equal(t, "$BROKER.CTL.RELOAD", e.subject("RELOAD"))
	assert.Equal(t, "$BROKER.CTL.SHUTDOWN", e.subject("SHUTDOWN"))
	assert.Equal(t, "$BROKER.CTL.QUERY.connz", e.subject("QUERY")+"."+"connz")
}

func TestOptions(t *testing.T) {
	e := &Engine{prefix: DefaultSubjectPrefix, timeout: DefaultRequestTimeout}

	WithSubjectPrefix("$CUSTOM.CTL")(e)
	WithRequestTimeout(10 * time.Second)(e)
	assert.Equal(t, "$CUSTOM.CTL.START", e.subject("START"))
	assert.Equal(t, 10*time.Second, e.timeout)

	// Zero values leave the defaults in place.
	WithSubjectPrefix("")(e)
	WithRequestTimeout(0)(e)
	WithRequestTimeout(-time.Second)(e)
	assert.Equal(t, "$CUSTOM.CTL", e.prefix)
	assert.Equal(t, 10*time.Second, e.timeout)
}
