package conf

import (
	"encoding/json"
	"reflect"
)

// Default listen address applied when a document does not set one.
const (
	DefaultHost = "localhost"
	DefaultPort = 4222
)

// EntryKind distinguishes stream from service imports and exports.
type EntryKind string

// Possible entry kinds
const (
	KindStream  EntryKind = "stream"
	KindService EntryKind = "service"
)

// Document is the root configuration produced by the parser and consumed by
// the validator, diff engine, and lifecycle orchestrator. A Document is never
// mutated once published as current; callers derive new configurations with
// Clone and modify the copy.
//
// Durations are canonical whole seconds and sizes are bytes, matching
// ParseDuration and ParseSize.
type Document struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	ServerName     string `json:"server_name,omitempty"`
	HTTPPort       int    `json:"http_port,omitempty"`
	Debug          bool   `json:"debug,omitempty"`
	Trace          bool   `json:"trace,omitempty"`
	LogFile        string `json:"logfile,omitempty"`
	LogSizeLimit   int64  `json:"log_size_limit,omitempty"`
	MaxPayload     int64  `json:"max_payload,omitempty"`
	MaxControlLine int    `json:"max_control_line,omitempty"`
	PingInterval   int64  `json:"ping_interval,omitempty"`
	PingMax        int    `json:"ping_max,omitempty"`
	WriteDeadline  int64  `json:"write_deadline,omitempty"`
	NoSublistCache bool   `json:"disable_sublist_cache,omitempty"`
	SystemAccount  string `json:"system_account,omitempty"`

	JetStream     *JetStreamConfig     `json:"jetstream,omitempty"`
	LeafNode      *LeafNodeConfig      `json:"leafnodes,omitempty"`
	Cluster       *ClusterConfig       `json:"cluster,omitempty"`
	Authorization *AuthorizationConfig `json:"authorization,omitempty"`
	Accounts      []Account            `json:"accounts,omitempty"`
}

// JetStreamConfig configures the persistence subsystem. The core only
// carries these values; the engine owns the storage itself.
type JetStreamConfig struct {
	Enabled      bool   `json:"enabled"`
	StoreDir     string `json:"store_dir,omitempty"`
	Domain       string `json:"domain,omitempty"`
	MaxMemory    int64  `json:"max_memory_store,omitempty"`
	MaxFileStore int64  `json:"max_file_store,omitempty"`
	UniqueTag    string `json:"unique_tag,omitempty"`
}

// LeafNodeConfig configures outward leaf connections and the subjects
// exchanged across them.
type LeafNodeConfig struct {
	Host           string               `json:"host,omitempty"`
	Port           int                  `json:"port,omitempty"`
	Advertise      string               `json:"advertise,omitempty"`
	Isolated       bool                 `json:"isolation,omitempty"`
	ReconnectDelay int64                `json:"reconnect,omitempty"`
	TLS            *TLSConfig           `json:"tls,omitempty"`
	Authorization  *AuthorizationConfig `json:"authorization,omitempty"`
	Remotes        []Remote             `json:"remotes,omitempty"`
	Imports        []string             `json:"imports,omitempty"`
	Exports        []string             `json:"exports,omitempty"`
}

// Remote describes one outward connection from a leaf node to a hub.
type Remote struct {
	URLs        []string   `json:"urls,omitempty"`
	Account     string     `json:"account,omitempty"`
	Credentials string     `json:"credentials,omitempty"`
	TLS         *TLSConfig `json:"tls,omitempty"`
}

// ClusterConfig configures full-mesh clustering.
type ClusterConfig struct {
	Name          string               `json:"name,omitempty"`
	Host          string               `json:"host,omitempty"`
	Port          int                  `json:"port,omitempty"`
	Authorization *AuthorizationConfig `json:"authorization,omitempty"`
}

// AuthorizationConfig holds simple user/password or token credentials.
type AuthorizationConfig struct {
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`
	Timeout  int64  `json:"timeout,omitempty"`
}

// TLSConfig holds TLS material paths and handshake behavior, including the
// platform certificate-store selector.
type TLSConfig struct {
	CertFile       string   `json:"cert_file,omitempty"`
	KeyFile        string   `json:"key_file,omitempty"`
	CAFile         string   `json:"ca_file,omitempty"`
	Verify         bool     `json:"verify,omitempty"`
	Timeout        int64    `json:"timeout,omitempty"`
	HandshakeFirst bool     `json:"handshake_first,omitempty"`
	Insecure       bool     `json:"insecure,omitempty"`
	CertStore      string   `json:"cert_store,omitempty"`
	CertMatchBy    string   `json:"cert_match_by,omitempty"`
	CertMatch      string   `json:"cert_match,omitempty"`
	PinnedCerts    []string `json:"pinned_certs,omitempty"`
}

// Account is an isolation boundary grouping users, subject imports and
// exports, and subject-mapping rules.
type Account struct {
	Name      string            `json:"name"`
	JetStream bool              `json:"jetstream,omitempty"`
	Users     []User            `json:"users,omitempty"`
	Imports   []AccountImport   `json:"imports,omitempty"`
	Exports   []AccountExport   `json:"exports,omitempty"`
	Mappings  map[string]string `json:"mappings,omitempty"`
}

// User is a single account credential pair.
type User struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

// AccountImport pulls a subject from another account into this one.
type AccountImport struct {
	Kind              EntryKind `json:"kind"`
	Account           string    `json:"account,omitempty"`
	Subject           string    `json:"subject"`
	To                string    `json:"to,omitempty"`
	ResponseType      string    `json:"response_type,omitempty"`
	ResponseThreshold int64     `json:"response_threshold,omitempty"`
}

// AccountExport makes a subject visible to other accounts.
type AccountExport struct {
	Kind              EntryKind `json:"kind"`
	Subject           string    `json:"subject"`
	ResponseType      string    `json:"response_type,omitempty"`
	ResponseThreshold int64     `json:"response_threshold,omitempty"`
}

// NewDocument returns a document carrying the documented defaults.
func NewDocument() *Document {
	return &Document{
		Host: DefaultHost,
		Port: DefaultPort,
	}
}

// Clone creates a deep copy of the document
func (d *Document) Clone() *Document {
	if d == nil {
		return NewDocument()
	}

	// Use JSON marshaling/unmarshaling for deep copy
	data, err := json.Marshal(d)
	if err != nil {
		// Fallback to shallow copy if marshaling fails
		copied := *d
		return &copied
	}

	var clone Document
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := *d
		return &copied
	}

	return &clone
}

// Equal reports whether two documents compare field-for-field equal.
func (d *Document) Equal(other *Document) bool {
	if d == nil || other == nil {
		return d == other
	}
	return reflect.DeepEqual(d, other)
}
