package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmptyInputYieldsDefaults(t *testing.T) {
	for _, input := range []string{"", "   \n\n", "# only comments\n# more\n"} {
		doc := Parse(input)
		assert.Equal(t, DefaultHost, doc.Host)
		assert.Equal(t, DefaultPort, doc.Port)
		assert.Nil(t, doc.JetStream)
		assert.Nil(t, doc.Accounts)
	}
}

func TestParseScalarFields(t *testing.T) {
	doc := Parse(`
host: 0.0.0.0
port: 4333
server_name: "edge-01"
http_port = 8222
debug: true
trace: on
logfile: /var/log/broker.log
log_size_limit: 10M
max_payload: 2MB
max_control_line: 4kb
ping_interval: 2m
ping_max: 3
write_deadline: 10s
disable_sublist_cache: yes
system_account: SYS
`)

	assert.Equal(t, "0.0.0.0", doc.Host)
	assert.Equal(t, 4333, doc.Port)
	assert.Equal(t, "edge-01", doc.ServerName)
	assert.Equal(t, 8222, doc.HTTPPort)
	assert.True(t, doc.Debug)
	assert.True(t, doc.Trace)
	assert.Equal(t, "/var/log/broker.log", doc.LogFile)
	assert.Equal(t, int64(10<<20), doc.LogSizeLimit)
	assert.Equal(t, int64(2<<20), doc.MaxPayload)
	assert.Equal(t, 4096, doc.MaxControlLine)
	assert.Equal(t, int64(120), doc.PingInterval)
	assert.Equal(t, 3, doc.PingMax)
	assert.Equal(t, int64(10), doc.WriteDeadline)
	assert.True(t, doc.NoSublistCache)
	assert.Equal(t, "SYS", doc.SystemAccount)
}

func TestParseDuplicateKeyLastWins(t *testing.T) {
	doc := Parse("port: 1000\nport: 2000\nhost: a\nhost: b\n")

	assert.Equal(t, 2000, doc.Port)
	assert.Equal(t, "b", doc.Host)
}

func TestParseUnknownKeysIgnored(t *testing.T) {
	doc := Parse(`
port: 5000
no_such_key: whatever
mystery_block {
    inner: value
    deeper { a: 1 }
}
mystery_list [one, two, three]
host: kept
`)

	assert.Equal(t, 5000, doc.Port)
	assert.Equal(t, "kept", doc.Host)
}

func TestParseKeysAreCaseSensitive(t *testing.T) {
	doc := Parse("PORT: 9999\nPort: 8888\n")

	assert.Equal(t, DefaultPort, doc.Port)
}

func TestParseJetStreamShorthand(t *testing.T) {
	doc := Parse("jetstream: enabled\n")

	require.NotNil(t, doc.JetStream)
	assert.True(t, doc.JetStream.Enabled)
}

func TestParseJetStreamBlock(t *testing.T) {
	doc := Parse(`
jetstream {
    store_dir: "/data/js"
    domain: hub
    max_memory_store: 1G
    max_file_store: 10G
    unique_tag: az
}
`)

	js := doc.JetStream
	require.NotNil(t, js)
	assert.True(t, js.Enabled, "block implies enabled")
	assert.Equal(t, "/data/js", js.StoreDir)
	assert.Equal(t, "hub", js.Domain)
	assert.Equal(t, int64(1<<30), js.MaxMemory)
	assert.Equal(t, int64(10)<<30, js.MaxFileStore)
	assert.Equal(t, "az", js.UniqueTag)
}

func TestParseJetStreamBlockExplicitlyDisabled(t *testing.T) {
	doc := Parse("jetstream {\n enabled: false\n store_dir: /tmp/js\n}\n")

	require.NotNil(t, doc.JetStream)
	assert.False(t, doc.JetStream.Enabled)
	assert.Equal(t, "/tmp/js", doc.JetStream.StoreDir)
}

func TestParseLeafNodes(t *testing.T) {
	doc := Parse(`
leafnodes {
    host: 0.0.0.0
    port: 7422
    advertise: "leaf.example.com:7422"
    isolation: true
    reconnect: 5s
    imports: [telemetry.>, "control.cmd"]
    exports: status.>
    remotes [
        {
            urls: ["nats://hub-a:7422", "nats://hub-b:7422"]
            account: EDGE
            credentials: /etc/creds/edge.creds
        }
        {
            url: "nats://hub-c:7422"
        }
    ]
}
`)

	ln := doc.LeafNode
	require.NotNil(t, ln)
	assert.Equal(t, "0.0.0.0", ln.Host)
	assert.Equal(t, 7422, ln.Port)
	assert.Equal(t, "leaf.example.com:7422", ln.Advertise)
	assert.True(t, ln.Isolated)
	assert.Equal(t, int64(5), ln.ReconnectDelay)
	assert.Equal(t, []string{"telemetry.>", "control.cmd"}, ln.Imports)
	assert.Equal(t, []string{"status.>"}, ln.Exports)

	require.Len(t, ln.Remotes, 2)
	assert.Equal(t, []string{"nats://hub-a:7422", "nats://hub-b:7422"}, ln.Remotes[0].URLs)
	assert.Equal(t, "EDGE", ln.Remotes[0].Account)
	assert.Equal(t, "/etc/creds/edge.creds", ln.Remotes[0].Credentials)
	assert.Equal(t, []string{"nats://hub-c:7422"}, ln.Remotes[1].URLs)
}

func TestParseCluster(t *testing.T) {
	doc := Parse(`
cluster {
    name: prod
    host: 0.0.0.0
    port: 6222
    authorization {
        user: route
        password: s3cret
        timeout: 2s
    }
}
`)

	cl := doc.Cluster
	require.NotNil(t, cl)
	assert.Equal(t, "prod", cl.Name)
	assert.Equal(t, 6222, cl.Port)
	require.NotNil(t, cl.Authorization)
	assert.Equal(t, "route", cl.Authorization.User)
	assert.Equal(t, "s3cret", cl.Authorization.Password)
	assert.Equal(t, int64(2), cl.Authorization.Timeout)
}

func TestParseAccounts(t *testing.T) {
	doc := Parse(`
accounts {
    APP {
        jetstream: true
        users [
            { user: app, password: pw1 }
            { user: ops, password: pw2 }
        ]
        exports [
            { stream: "orders.>" }
            { service: "rpc.lookup", response_type: Singleton }
        ]
        mappings {
            "orders.v1.>": "orders.v2.>"
        }
    }
    AUDIT {
        imports [
            { stream: { account: APP, subject: "orders.>" }, to: "audit.orders.>" }
            { service: { account: APP, subject: rpc.lookup } }
        ]
    }
}
`)

	require.Len(t, doc.Accounts, 2)

	app := doc.Accounts[0]
	assert.Equal(t, "APP", app.Name)
	assert.True(t, app.JetStream)
	require.Len(t, app.Users, 2)
	assert.Equal(t, "app", app.Users[0].User)
	assert.Equal(t, "pw2", app.Users[1].Password)
	require.Len(t, app.Exports, 2)
	assert.Equal(t, KindStream, app.Exports[0].Kind)
	assert.Equal(t, "orders.>", app.Exports[0].Subject)
	assert.Equal(t, KindService, app.Exports[1].Kind)
	assert.Equal(t, "Singleton", app.Exports[1].ResponseType)
	assert.Equal(t, map[string]string{"orders.v1.>": "orders.v2.>"}, app.Mappings)

	audit := doc.Accounts[1]
	assert.Equal(t, "AUDIT", audit.Name)
	require.Len(t, audit.Imports, 2)
	assert.Equal(t, KindStream, audit.Imports[0].Kind)
	assert.Equal(t, "APP", audit.Imports[0].Account)
	assert.Equal(t, "orders.>", audit.Imports[0].Subject)
	assert.Equal(t, "audit.orders.>", audit.Imports[0].To)
	assert.Equal(t, KindService, audit.Imports[1].Kind)
}

func TestParseDuplicateAccountReplacesKeepingOrder(t *testing.T) {
	doc := Parse(`
accounts {
    A { jetstream: true }
    B { }
    A { jetstream: false }
}
`)

	require.Len(t, doc.Accounts, 2)
	assert.Equal(t, "A", doc.Accounts[0].Name)
	assert.False(t, doc.Accounts[0].JetStream)
	assert.Equal(t, "B", doc.Accounts[1].Name)
}

func TestParseUnterminatedBlockRunsToEOF(t *testing.T) {
	doc := Parse(`
port: 4333
jetstream {
    store_dir: /data/js
`)

	assert.Equal(t, 4333, doc.Port)
	require.NotNil(t, doc.JetStream)
	assert.Equal(t, "/data/js", doc.JetStream.StoreDir)
}

func TestParseMalformedSectionDoesNotBreakRest(t *testing.T) {
	doc := Parse(`
host: first
} ] , :
cluster { port: } }
port: 6000
`)

	assert.Equal(t, "first", doc.Host)
	assert.Equal(t, 6000, doc.Port)
}

func TestParseIsIdempotent(t *testing.T) {
	input := `
host: 0.0.0.0
port: 4333
jetstream {
    store_dir: /data/js
}
accounts {
    APP { users [ { user: a, password: b } ] }
}
`
	first := Parse(input)
	second := Parse(input)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated parse differs (-first +second):\n%s", diff)
	}
}

func TestParseAuthorizationToken(t *testing.T) {
	doc := Parse("authorization { token: \"s3cr3t:tok\" }\n")

	require.NotNil(t, doc.Authorization)
	assert.Equal(t, "s3cr3t:tok", doc.Authorization.Token)
}

func TestParseTLSBlock(t *testing.T) {
	doc := Parse(`
leafnodes {
    tls {
        cert_file: /etc/tls/cert.pem
        key_file: /etc/tls/key.pem
        ca_file: /etc/tls/ca.pem
        verify: true
        timeout: 3s
        handshake_first: true
        pinned_certs: [aa11, bb22]
    }
}
`)

	require.NotNil(t, doc.LeafNode)
	tc := doc.LeafNode.TLS
	require.NotNil(t, tc)
	assert.Equal(t, "/etc/tls/cert.pem", tc.CertFile)
	assert.True(t, tc.Verify)
	assert.True(t, tc.HandshakeFirst)
	assert.Equal(t, int64(3), tc.Timeout)
	assert.Equal(t, []string{"aa11", "bb22"}, tc.PinnedCerts)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broker.conf")
	require.NoError(t, os.WriteFile(path, []byte("port: 4500\n"), 0o600))

	doc, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4500, doc.Port)
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "absent.conf"))
	assert.Error(t, err)
}

func TestDocumentCloneIsDeep(t *testing.T) {
	doc := Parse("jetstream { store_dir: /a }\naccounts { X { } }\n")
	clone := doc.Clone()

	clone.JetStream.StoreDir = "/b"
	clone.Accounts[0].Name = "Y"

	assert.Equal(t, "/a", doc.JetStream.StoreDir)
	assert.Equal(t, "X", doc.Accounts[0].Name)
	assert.True(t, doc.Equal(doc.Clone()))
}
