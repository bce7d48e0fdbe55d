package conf

import (
	"os"
	"strconv"
	"strings"

	"github.com/c360/brokerconf/errors"
)

// Parse converts DSL text into a configuration document. Parsing is best
// effort by design: malformed content never fails, it is skipped to the
// nearest recoverable point, and an unterminated block extends to end of
// input. Empty or comment-only input yields a document with defaults.
// Rejecting semantically bad configurations is the validator's job.
func Parse(text string) *Document {
	p := &parser{toks: lexAll(text)}
	doc := NewDocument()
	p.parseTopLevel(doc)
	return doc
}

// ParseFile parses the configuration file at path. An unreadable file is the
// one hard failure of the parsing layer; the file's content is parsed with
// the same tolerance as Parse.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapInvalid(err, "conf", "ParseFile", "read file")
	}
	return Parse(string(data)), nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) cur() token {
	if p.pos >= len(p.toks) {
		return token{kind: tokEOF}
	}
	return p.toks[p.pos]
}

func (p *parser) advance() {
	if p.pos < len(p.toks) {
		p.pos++
	}
}

// skipSoft consumes newlines and commas, the insignificant separators
// between entries and array elements.
func (p *parser) skipSoft() {
	for {
		switch p.cur().kind {
		case tokNewline, tokComma:
			p.advance()
		default:
			return
		}
	}
}

// parseTopLevel consumes key/value statements until end of input. Stray
// closing delimiters at the top level are skipped without error.
func (p *parser) parseTopLevel(doc *Document) {
	for {
		p.skipSoft()
		t := p.cur()
		switch t.kind {
		case tokEOF:
			return
		case tokIdent, tokString:
			p.advance()
			p.acceptSep()
			p.applyTopLevelKey(doc, t.text)
		default:
			p.advance()
		}
	}
}

func (p *parser) acceptSep() {
	if p.cur().kind == tokSep {
		p.advance()
	}
}

// applyTopLevelKey dispatches one top-level statement. Keys are matched
// case-sensitively against the recognized set; anything else is consumed
// and dropped. A repeated key overwrites the earlier value.
func (p *parser) applyTopLevelKey(doc *Document, key string) {
	switch key {
	case "host":
		if s, ok := p.scalar(); ok {
			doc.Host = s
		}
	case "port":
		doc.Port = p.intValue()
	case "server_name":
		if s, ok := p.scalar(); ok {
			doc.ServerName = s
		}
	case "http_port":
		doc.HTTPPort = p.intValue()
	case "debug":
		doc.Debug = p.boolValue()
	case "trace":
		doc.Trace = p.boolValue()
	case "logfile", "log_file":
		if s, ok := p.scalar(); ok {
			doc.LogFile = s
		}
	case "log_size_limit":
		doc.LogSizeLimit = p.sizeValue()
	case "max_payload":
		doc.MaxPayload = p.sizeValue()
	case "max_control_line":
		doc.MaxControlLine = int(p.sizeValue())
	case "ping_interval":
		doc.PingInterval = p.durationValue()
	case "ping_max":
		doc.PingMax = p.intValue()
	case "write_deadline":
		doc.WriteDeadline = p.durationValue()
	case "disable_sublist_cache":
		doc.NoSublistCache = p.boolValue()
	case "system_account":
		if s, ok := p.scalar(); ok {
			doc.SystemAccount = s
		}
	case "jetstream":
		doc.JetStream = p.parseJetStream()
	case "leafnodes":
		doc.LeafNode = p.parseLeafNode()
	case "cluster":
		doc.Cluster = p.parseCluster()
	case "authorization":
		doc.Authorization = p.parseAuthorization()
	case "accounts":
		doc.Accounts = p.parseAccounts()
	default:
		p.skipValue()
	}
}

// scalar consumes a bare or quoted value. When the next token is not a
// scalar (a block, an array, or nothing before the line ends), the pending
// value is skipped and ok is false.
func (p *parser) scalar() (string, bool) {
	t := p.cur()
	if t.kind == tokIdent || t.kind == tokString {
		p.advance()
		return t.text, true
	}
	p.skipValue()
	return "", false
}

func (p *parser) boolValue() bool {
	s, ok := p.scalar()
	if !ok {
		return false
	}
	return parseBool(s)
}

func (p *parser) intValue() int {
	s, ok := p.scalar()
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func (p *parser) sizeValue() int64 {
	s, ok := p.scalar()
	if !ok {
		return 0
	}
	return ParseSize(s)
}

func (p *parser) durationValue() int64 {
	s, ok := p.scalar()
	if !ok {
		return 0
	}
	return ParseDuration(s)
}

// parseBool accepts the documented truthy and falsy spellings, without
// regard to case. Anything unrecognized is false.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "enabled", "on":
		return true
	default:
		return false
	}
}

// skipValue consumes one pending value of any shape: a scalar token, or a
// balanced block/array run (tolerating EOF inside). An empty value before a
// newline or closing delimiter consumes nothing.
func (p *parser) skipValue() {
	switch p.cur().kind {
	case tokLBrace, tokLBracket:
		depth := 0
		for {
			switch p.cur().kind {
			case tokLBrace, tokLBracket:
				depth++
			case tokRBrace, tokRBracket:
				depth--
				if depth <= 0 {
					p.advance()
					return
				}
			case tokEOF:
				return
			}
			p.advance()
		}
	case tokIdent, tokString:
		p.advance()
	default:
		// Empty value; leave newline/closing token for the caller.
	}
}

// skipElement discards one array element of any shape, always consuming at
// least one token so array recovery cannot stall.
func (p *parser) skipElement() {
	before := p.pos
	p.skipValue()
	if p.pos == before {
		p.advance()
	}
}

// parseEntries walks the key/value entries of a block. The opening brace
// must be the current token; when it is not, the pending value is skipped
// and the handler never runs. The handler consumes each entry's value.
// A missing closing brace ends the block at end of input.
func (p *parser) parseEntries(handle func(key string)) bool {
	if p.cur().kind != tokLBrace {
		p.skipValue()
		return false
	}
	p.advance()
	for {
		p.skipSoft()
		t := p.cur()
		switch t.kind {
		case tokRBrace:
			p.advance()
			return true
		case tokEOF:
			return true
		case tokIdent, tokString:
			p.advance()
			p.acceptSep()
			handle(t.text)
		default:
			p.advance()
		}
	}
}

// parseArray walks the elements of a bracketed array. Elements may be
// separated by commas or newlines. The element callback must consume at
// least the current token.
func (p *parser) parseArray(elem func()) bool {
	if p.cur().kind != tokLBracket {
		p.skipValue()
		return false
	}
	p.advance()
	for {
		p.skipSoft()
		switch p.cur().kind {
		case tokRBracket:
			p.advance()
			return true
		case tokEOF:
			return true
		default:
			elem()
		}
	}
}

// stringList parses either a bracketed list of scalars or a lone scalar.
func (p *parser) stringList() []string {
	var out []string
	if p.cur().kind == tokLBracket {
		p.parseArray(func() {
			before := p.pos
			if s, ok := p.scalar(); ok {
				out = append(out, s)
			} else if p.pos == before {
				p.advance()
			}
		})
		return out
	}
	if s, ok := p.scalar(); ok {
		out = append(out, s)
	}
	return out
}

// parseJetStream accepts either a block or a bare enable flag, mirroring
// the shorthand "jetstream: enabled".
func (p *parser) parseJetStream() *JetStreamConfig {
	js := &JetStreamConfig{}
	if p.cur().kind != tokLBrace {
		js.Enabled = p.boolValue()
		return js
	}
	// A jetstream block implies the subsystem is on unless disabled inside.
	js.Enabled = true
	p.parseEntries(func(key string) {
		switch key {
		case "enabled":
			js.Enabled = p.boolValue()
		case "store_dir":
			if s, ok := p.scalar(); ok {
				js.StoreDir = s
			}
		case "domain":
			if s, ok := p.scalar(); ok {
				js.Domain = s
			}
		case "max_memory_store":
			js.MaxMemory = p.sizeValue()
		case "max_file_store":
			js.MaxFileStore = p.sizeValue()
		case "unique_tag":
			if s, ok := p.scalar(); ok {
				js.UniqueTag = s
			}
		default:
			p.skipValue()
		}
	})
	return js
}

func (p *parser) parseLeafNode() *LeafNodeConfig {
	ln := &LeafNodeConfig{}
	p.parseEntries(func(key string) {
		switch key {
		case "host":
			if s, ok := p.scalar(); ok {
				ln.Host = s
			}
		case "port":
			ln.Port = p.intValue()
		case "advertise":
			if s, ok := p.scalar(); ok {
				ln.Advertise = s
			}
		case "isolation":
			ln.Isolated = p.boolValue()
		case "reconnect":
			ln.ReconnectDelay = p.durationValue()
		case "tls":
			ln.TLS = p.parseTLS()
		case "authorization":
			ln.Authorization = p.parseAuthorization()
		case "remotes":
			ln.Remotes = p.parseRemotes()
		case "imports":
			ln.Imports = p.stringList()
		case "exports":
			ln.Exports = p.stringList()
		default:
			p.skipValue()
		}
	})
	return ln
}

func (p *parser) parseRemotes() []Remote {
	var remotes []Remote
	p.parseArray(func() {
		if p.cur().kind != tokLBrace {
			p.skipElement()
			return
		}
		r := Remote{}
		p.parseEntries(func(key string) {
			switch key {
			case "url":
				if s, ok := p.scalar(); ok {
					r.URLs = append(r.URLs, s)
				}
			case "urls":
				r.URLs = append(r.URLs, p.stringList()...)
			case "account":
				if s, ok := p.scalar(); ok {
					r.Account = s
				}
			case "credentials":
				if s, ok := p.scalar(); ok {
					r.Credentials = s
				}
			case "tls":
				r.TLS = p.parseTLS()
			default:
				p.skipValue()
			}
		})
		remotes = append(remotes, r)
	})
	return remotes
}

func (p *parser) parseCluster() *ClusterConfig {
	cl := &ClusterConfig{}
	p.parseEntries(func(key string) {
		switch key {
		case "name":
			if s, ok := p.scalar(); ok {
				cl.Name = s
			}
		case "host":
			if s, ok := p.scalar(); ok {
				cl.Host = s
			}
		case "port":
			cl.Port = p.intValue()
		case "authorization":
			cl.Authorization = p.parseAuthorization()
		default:
			p.skipValue()
		}
	})
	return cl
}

func (p *parser) parseAuthorization() *AuthorizationConfig {
	auth := &AuthorizationConfig{}
	p.parseEntries(func(key string) {
		switch key {
		case "user":
			if s, ok := p.scalar(); ok {
				auth.User = s
			}
		case "password":
			if s, ok := p.scalar(); ok {
				auth.Password = s
			}
		case "token":
			if s, ok := p.scalar(); ok {
				auth.Token = s
			}
		case "timeout":
			auth.Timeout = p.durationValue()
		default:
			p.skipValue()
		}
	})
	return auth
}

func (p *parser) parseTLS() *TLSConfig {
	tc := &TLSConfig{}
	p.parseEntries(func(key string) {
		switch key {
		case "cert_file":
			if s, ok := p.scalar(); ok {
				tc.CertFile = s
			}
		case "key_file":
			if s, ok := p.scalar(); ok {
				tc.KeyFile = s
			}
		case "ca_file":
			if s, ok := p.scalar(); ok {
				tc.CAFile = s
			}
		case "verify":
			tc.Verify = p.boolValue()
		case "timeout":
			tc.Timeout = p.durationValue()
		case "handshake_first":
			tc.HandshakeFirst = p.boolValue()
		case "insecure":
			tc.Insecure = p.boolValue()
		case "cert_store":
			if s, ok := p.scalar(); ok {
				tc.CertStore = s
			}
		case "cert_match_by":
			if s, ok := p.scalar(); ok {
				tc.CertMatchBy = s
			}
		case "cert_match":
			if s, ok := p.scalar(); ok {
				tc.CertMatch = s
			}
		case "pinned_certs":
			tc.PinnedCerts = p.stringList()
		default:
			p.skipValue()
		}
	})
	return tc
}

// parseAccounts reads the accounts block: one named entry per account,
// declaration order preserved, a repeated name replacing the earlier body.
func (p *parser) parseAccounts() []Account {
	var accounts []Account
	p.parseEntries(func(name string) {
		if p.cur().kind != tokLBrace {
			p.skipValue()
			return
		}
		acct := p.parseAccount(name)
		for i := range accounts {
			if accounts[i].Name == name {
				accounts[i] = acct
				return
			}
		}
		accounts = append(accounts, acct)
	})
	return accounts
}

func (p *parser) parseAccount(name string) Account {
	acct := Account{Name: name}
	p.parseEntries(func(key string) {
		switch key {
		case "jetstream":
			acct.JetStream = p.boolValue()
		case "users":
			acct.Users = p.parseUsers()
		case "imports":
			acct.Imports = p.parseImports()
		case "exports":
			acct.Exports = p.parseExports()
		case "mappings":
			acct.Mappings = p.parseMappings()
		default:
			p.skipValue()
		}
	})
	return acct
}

func (p *parser) parseUsers() []User {
	var users []User
	p.parseArray(func() {
		if p.cur().kind != tokLBrace {
			p.skipElement()
			return
		}
		u := User{}
		p.parseEntries(func(key string) {
			switch key {
			case "user":
				if s, ok := p.scalar(); ok {
					u.User = s
				}
			case "password":
				if s, ok := p.scalar(); ok {
					u.Password = s
				}
			default:
				p.skipValue()
			}
		})
		users = append(users, u)
	})
	return users
}

// parseImports reads import entries. Stream versus service is decided by
// which key is present; the source is either a bare subject or an
// {account, subject} block.
func (p *parser) parseImports() []AccountImport {
	var imports []AccountImport
	p.parseArray(func() {
		if p.cur().kind != tokLBrace {
			p.skipElement()
			return
		}
		imp := AccountImport{}
		p.parseEntries(func(key string) {
			switch key {
			case "stream":
				imp.Kind = KindStream
				imp.Account, imp.Subject = p.parseSourceRef()
			case "service":
				imp.Kind = KindService
				imp.Account, imp.Subject = p.parseSourceRef()
			case "to":
				if s, ok := p.scalar(); ok {
					imp.To = s
				}
			case "response_type":
				if s, ok := p.scalar(); ok {
					imp.ResponseType = s
				}
			case "response_threshold":
				imp.ResponseThreshold = p.durationValue()
			default:
				p.skipValue()
			}
		})
		if imp.Kind != "" {
			imports = append(imports, imp)
		}
	})
	return imports
}

// parseSourceRef reads an import source: either {account: A, subject: s}
// or a bare subject string.
func (p *parser) parseSourceRef() (account, subject string) {
	if p.cur().kind != tokLBrace {
		s, _ := p.scalar()
		return "", s
	}
	p.parseEntries(func(key string) {
		switch key {
		case "account":
			if s, ok := p.scalar(); ok {
				account = s
			}
		case "subject":
			if s, ok := p.scalar(); ok {
				subject = s
			}
		default:
			p.skipValue()
		}
	})
	return account, subject
}

func (p *parser) parseExports() []AccountExport {
	var exports []AccountExport
	p.parseArray(func() {
		if p.cur().kind != tokLBrace {
			p.skipElement()
			return
		}
		exp := AccountExport{}
		p.parseEntries(func(key string) {
			switch key {
			case "stream":
				exp.Kind = KindStream
				if s, ok := p.scalar(); ok {
					exp.Subject = s
				}
			case "service":
				exp.Kind = KindService
				if s, ok := p.scalar(); ok {
					exp.Subject = s
				}
			case "response_type":
				if s, ok := p.scalar(); ok {
					exp.ResponseType = s
				}
			case "response_threshold":
				exp.ResponseThreshold = p.durationValue()
			default:
				p.skipValue()
			}
		})
		if exp.Kind != "" {
			exports = append(exports, exp)
		}
	})
	return exports
}

func (p *parser) parseMappings() map[string]string {
	mappings := make(map[string]string)
	p.parseEntries(func(src string) {
		if dst, ok := p.scalar(); ok {
			mappings[src] = dst
		}
	})
	if len(mappings) == 0 {
		return nil
	}
	return mappings
}
