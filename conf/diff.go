package conf

import (
	"reflect"
)

// Change records one field-level difference between two documents. Path is
// a stable identifier independent of the value's type, e.g. "Debug" or
// "LeafNode.Port".
type Change struct {
	Path string `json:"path"`
	Old  any    `json:"old"`
	New  any    `json:"new"`
}

// Diff computes the ordered list of field-level differences between prev
// and next, covering nested sub-documents. A nil prev yields an empty diff
// by definition: the first configuration has no predecessor to differ from.
func Diff(prev, next *Document) []Change {
	if prev == nil || next == nil {
		return nil
	}

	d := &differ{}

	d.field("Host", prev.Host, next.Host)
	d.field("Port", prev.Port, next.Port)
	d.field("ServerName", prev.ServerName, next.ServerName)
	d.field("HTTPPort", prev.HTTPPort, next.HTTPPort)
	d.field("Debug", prev.Debug, next.Debug)
	d.field("Trace", prev.Trace, next.Trace)
	d.field("LogFile", prev.LogFile, next.LogFile)
	d.field("LogSizeLimit", prev.LogSizeLimit, next.LogSizeLimit)
	d.field("MaxPayload", prev.MaxPayload, next.MaxPayload)
	d.field("MaxControlLine", prev.MaxControlLine, next.MaxControlLine)
	d.field("PingInterval", prev.PingInterval, next.PingInterval)
	d.field("PingMax", prev.PingMax, next.PingMax)
	d.field("WriteDeadline", prev.WriteDeadline, next.WriteDeadline)
	d.field("NoSublistCache", prev.NoSublistCache, next.NoSublistCache)
	d.field("SystemAccount", prev.SystemAccount, next.SystemAccount)

	d.jetStream(prev.JetStream, next.JetStream)
	d.leafNode(prev.LeafNode, next.LeafNode)
	d.cluster(prev.Cluster, next.Cluster)
	d.authorization("Authorization", prev.Authorization, next.Authorization)

	// Accounts are compared as a whole: account bodies are too structured
	// for per-field paths to stay meaningful across reordering.
	if !reflect.DeepEqual(prev.Accounts, next.Accounts) {
		d.changes = append(d.changes, Change{Path: "Accounts", Old: prev.Accounts, New: next.Accounts})
	}

	return d.changes
}

type differ struct {
	changes []Change
}

func (d *differ) field(path string, oldVal, newVal any) {
	if !reflect.DeepEqual(oldVal, newVal) {
		d.changes = append(d.changes, Change{Path: path, Old: oldVal, New: newVal})
	}
}

// jetStream compares the JetStream sub-documents, treating absence as the
// zero configuration so adding or removing the block diffs per field.
func (d *differ) jetStream(prev, next *JetStreamConfig) {
	p, n := derefJetStream(prev), derefJetStream(next)
	d.field("JetStream.Enabled", p.Enabled, n.Enabled)
	d.field("JetStream.StoreDir", p.StoreDir, n.StoreDir)
	d.field("JetStream.Domain", p.Domain, n.Domain)
	d.field("JetStream.MaxMemory", p.MaxMemory, n.MaxMemory)
	d.field("JetStream.MaxFileStore", p.MaxFileStore, n.MaxFileStore)
	d.field("JetStream.UniqueTag", p.UniqueTag, n.UniqueTag)
}

func (d *differ) leafNode(prev, next *LeafNodeConfig) {
	p, n := derefLeafNode(prev), derefLeafNode(next)
	d.field("LeafNode.Host", p.Host, n.Host)
	d.field("LeafNode.Port", p.Port, n.Port)
	d.field("LeafNode.Advertise", p.Advertise, n.Advertise)
	d.field("LeafNode.Isolated", p.Isolated, n.Isolated)
	d.field("LeafNode.ReconnectDelay", p.ReconnectDelay, n.ReconnectDelay)
	d.tls("LeafNode.TLS", p.TLS, n.TLS)
	d.authorization("LeafNode.Authorization", p.Authorization, n.Authorization)
	d.field("LeafNode.Remotes", p.Remotes, n.Remotes)
	d.field("LeafNode.Imports", p.Imports, n.Imports)
	d.field("LeafNode.Exports", p.Exports, n.Exports)
}

func (d *differ) cluster(prev, next *ClusterConfig) {
	p, n := derefCluster(prev), derefCluster(next)
	d.field("Cluster.Name", p.Name, n.Name)
	d.field("Cluster.Host", p.Host, n.Host)
	d.field("Cluster.Port", p.Port, n.Port)
	d.authorization("Cluster.Authorization", p.Authorization, n.Authorization)
}

func (d *differ) authorization(prefix string, prev, next *AuthorizationConfig) {
	p, n := derefAuthorization(prev), derefAuthorization(next)
	d.field(prefix+".User", p.User, n.User)
	d.field(prefix+".Password", p.Password, n.Password)
	d.field(prefix+".Token", p.Token, n.Token)
	d.field(prefix+".Timeout", p.Timeout, n.Timeout)
}

func (d *differ) tls(prefix string, prev, next *TLSConfig) {
	p, n := derefTLS(prev), derefTLS(next)
	d.field(prefix+".CertFile", p.CertFile, n.CertFile)
	d.field(prefix+".KeyFile", p.KeyFile, n.KeyFile)
	d.field(prefix+".CAFile", p.CAFile, n.CAFile)
	d.field(prefix+".Verify", p.Verify, n.Verify)
	d.field(prefix+".Timeout", p.Timeout, n.Timeout)
	d.field(prefix+".HandshakeFirst", p.HandshakeFirst, n.HandshakeFirst)
	d.field(prefix+".Insecure", p.Insecure, n.Insecure)
	d.field(prefix+".CertStore", p.CertStore, n.CertStore)
	d.field(prefix+".CertMatchBy", p.CertMatchBy, n.CertMatchBy)
	d.field(prefix+".CertMatch", p.CertMatch, n.CertMatch)
	d.field(prefix+".PinnedCerts", p.PinnedCerts, n.PinnedCerts)
}

func derefJetStream(js *JetStreamConfig) JetStreamConfig {
	if js == nil {
		return JetStreamConfig{}
	}
	return *js
}

func derefLeafNode(ln *LeafNodeConfig) LeafNodeConfig {
	if ln == nil {
		return LeafNodeConfig{}
	}
	return *ln
}

func derefCluster(cl *ClusterConfig) ClusterConfig {
	if cl == nil {
		return ClusterConfig{}
	}
	return *cl
}

func derefAuthorization(auth *AuthorizationConfig) AuthorizationConfig {
	if auth == nil {
		return AuthorizationConfig{}
	}
	return *auth
}

func derefTLS(tc *TLSConfig) TLSConfig {
	if tc == nil {
		return TLSConfig{}
	}
	return *tc
}
