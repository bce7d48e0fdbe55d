package conf

import (
	"fmt"
	"strconv"
	"strings"
)

// Flatten renders the document as the flat key/value structure consumed at
// the engine boundary. Keys follow the external naming convention of the
// DSL (snake_case, dot-joined nesting); zero-valued optional fields are
// omitted so the engine sees only what was configured. Host and port are
// always present.
func (d *Document) Flatten() map[string]string {
	out := make(map[string]string)
	if d == nil {
		return out
	}

	out["host"] = d.Host
	out["port"] = strconv.Itoa(d.Port)
	putString(out, "server_name", d.ServerName)
	putInt(out, "http_port", d.HTTPPort)
	putBool(out, "debug", d.Debug)
	putBool(out, "trace", d.Trace)
	putString(out, "logfile", d.LogFile)
	putInt64(out, "log_size_limit", d.LogSizeLimit)
	putInt64(out, "max_payload", d.MaxPayload)
	putInt(out, "max_control_line", d.MaxControlLine)
	putInt64(out, "ping_interval", d.PingInterval)
	putInt(out, "ping_max", d.PingMax)
	putInt64(out, "write_deadline", d.WriteDeadline)
	putBool(out, "disable_sublist_cache", d.NoSublistCache)
	putString(out, "system_account", d.SystemAccount)

	if js := d.JetStream; js != nil {
		out["jetstream.enabled"] = strconv.FormatBool(js.Enabled)
		putString(out, "jetstream.store_dir", js.StoreDir)
		putString(out, "jetstream.domain", js.Domain)
		putInt64(out, "jetstream.max_memory_store", js.MaxMemory)
		putInt64(out, "jetstream.max_file_store", js.MaxFileStore)
		putString(out, "jetstream.unique_tag", js.UniqueTag)
	}

	if ln := d.LeafNode; ln != nil {
		putString(out, "leafnodes.host", ln.Host)
		putInt(out, "leafnodes.port", ln.Port)
		putString(out, "leafnodes.advertise", ln.Advertise)
		putBool(out, "leafnodes.isolation", ln.Isolated)
		putInt64(out, "leafnodes.reconnect", ln.ReconnectDelay)
		flattenTLS(out, "leafnodes.tls", ln.TLS)
		flattenAuthorization(out, "leafnodes.authorization", ln.Authorization)
		putList(out, "leafnodes.imports", ln.Imports)
		putList(out, "leafnodes.exports", ln.Exports)
		for i, remote := range ln.Remotes {
			prefix := fmt.Sprintf("leafnodes.remotes.%d", i)
			putList(out, prefix+".urls", remote.URLs)
			putString(out, prefix+".account", remote.Account)
			putString(out, prefix+".credentials", remote.Credentials)
			flattenTLS(out, prefix+".tls", remote.TLS)
		}
	}

	if cl := d.Cluster; cl != nil {
		putString(out, "cluster.name", cl.Name)
		putString(out, "cluster.host", cl.Host)
		putInt(out, "cluster.port", cl.Port)
		flattenAuthorization(out, "cluster.authorization", cl.Authorization)
	}

	flattenAuthorization(out, "authorization", d.Authorization)

	for _, acct := range d.Accounts {
		prefix := "accounts." + acct.Name
		putBool(out, prefix+".jetstream", acct.JetStream)
		for i, user := range acct.Users {
			putString(out, fmt.Sprintf("%s.users.%d.user", prefix, i), user.User)
			putString(out, fmt.Sprintf("%s.users.%d.password", prefix, i), user.Password)
		}
		for i, imp := range acct.Imports {
			impPrefix := fmt.Sprintf("%s.imports.%d", prefix, i)
			out[impPrefix+".kind"] = string(imp.Kind)
			putString(out, impPrefix+".account", imp.Account)
			putString(out, impPrefix+".subject", imp.Subject)
			putString(out, impPrefix+".to", imp.To)
			putString(out, impPrefix+".response_type", imp.ResponseType)
			putInt64(out, impPrefix+".response_threshold", imp.ResponseThreshold)
		}
		for i, exp := range acct.Exports {
			expPrefix := fmt.Sprintf("%s.exports.%d", prefix, i)
			out[expPrefix+".kind"] = string(exp.Kind)
			putString(out, expPrefix+".subject", exp.Subject)
			putString(out, expPrefix+".response_type", exp.ResponseType)
			putInt64(out, expPrefix+".response_threshold", exp.ResponseThreshold)
		}
		for src, dst := range acct.Mappings {
			out[prefix+".mappings."+src] = dst
		}
	}

	return out
}

func putString(out map[string]string, key, value string) {
	if value != "" {
		out[key] = value
	}
}

func putInt(out map[string]string, key string, value int) {
	if value != 0 {
		out[key] = strconv.Itoa(value)
	}
}

func putInt64(out map[string]string, key string, value int64) {
	if value != 0 {
		out[key] = strconv.FormatInt(value, 10)
	}
}

func putBool(out map[string]string, key string, value bool) {
	if value {
		out[key] = "true"
	}
}

func putList(out map[string]string, key string, values []string) {
	if len(values) > 0 {
		out[key] = strings.Join(values, ",")
	}
}

func flattenTLS(out map[string]string, prefix string, tc *TLSConfig) {
	if tc == nil {
		return
	}
	putString(out, prefix+".cert_file", tc.CertFile)
	putString(out, prefix+".key_file", tc.KeyFile)
	putString(out, prefix+".ca_file", tc.CAFile)
	putBool(out, prefix+".verify", tc.Verify)
	putInt64(out, prefix+".timeout", tc.Timeout)
	putBool(out, prefix+".handshake_first", tc.HandshakeFirst)
	putBool(out, prefix+".insecure", tc.Insecure)
	putString(out, prefix+".cert_store", tc.CertStore)
	putString(out, prefix+".cert_match_by", tc.CertMatchBy)
	putString(out, prefix+".cert_match", tc.CertMatch)
	putList(out, prefix+".pinned_certs", tc.PinnedCerts)
}

func flattenAuthorization(out map[string]string, prefix string, auth *AuthorizationConfig) {
	if auth == nil {
		return
	}
	putString(out, prefix+".user", auth.User)
	putString(out, prefix+".password", auth.Password)
	putString(out, prefix+".token", auth.Token)
	putInt64(out, prefix+".timeout", auth.Timeout)
}
