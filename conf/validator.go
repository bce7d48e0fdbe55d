package conf

import (
	"fmt"
	"strings"
)

// Violation describes one semantic problem found in a document. Path is the
// stable property path the problem is anchored to.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Summarize joins violations into one human-readable line for failure
// results and logs.
func Summarize(violations []Violation) string {
	if len(violations) == 0 {
		return ""
	}
	parts := make([]string, len(violations))
	for i, v := range violations {
		parts[i] = v.String()
	}
	return strings.Join(parts, "; ")
}

// Validate checks a standalone document against the structural invariants:
// port ranges and collisions, JetStream prerequisites, credential pairing,
// and leaf-node subject syntax. It returns all violations found, never
// stopping at the first.
func Validate(doc *Document) []Violation {
	if doc == nil {
		return []Violation{{Path: "Document", Message: "document is nil"}}
	}

	var out []Violation

	if !validPort(doc.Port) {
		out = append(out, Violation{"Port", fmt.Sprintf("port %d outside valid range 1-65535", doc.Port)})
	}
	if doc.HTTPPort != 0 && !validPort(doc.HTTPPort) {
		out = append(out, Violation{"HTTPPort", fmt.Sprintf("monitor port %d outside valid range 1-65535", doc.HTTPPort)})
	}

	out = append(out, validateAuthorization("Authorization", doc.Authorization)...)
	out = append(out, validateJetStream(doc.JetStream)...)
	out = append(out, validateLeafNode(doc)...)
	out = append(out, validateCluster(doc)...)
	out = append(out, validateAccounts(doc.Accounts)...)

	return out
}

// ValidateTransition checks a candidate against the currently active
// document. It is a superset of Validate: every standalone invariant is
// re-checked, then constraints that only exist across a reload.
func ValidateTransition(prev, next *Document) []Violation {
	out := Validate(next)
	if prev == nil || next == nil {
		return out
	}

	// The engine cannot relocate an active JetStream store during a hot
	// reload; disable it first, then move the directory.
	if prev.JetStream != nil && next.JetStream != nil &&
		prev.JetStream.Enabled && next.JetStream.Enabled &&
		prev.JetStream.StoreDir != next.JetStream.StoreDir {
		out = append(out, Violation{
			Path:    "JetStream.StoreDir",
			Message: "store directory cannot change while jetstream is enabled",
		})
	}

	return out
}

func validPort(port int) bool {
	return port >= 1 && port <= 65535
}

func validateJetStream(js *JetStreamConfig) []Violation {
	if js == nil || !js.Enabled {
		return nil
	}
	var out []Violation
	if js.StoreDir == "" {
		out = append(out, Violation{"JetStream.StoreDir", "store directory required when jetstream is enabled"})
	}
	return out
}

func validateLeafNode(doc *Document) []Violation {
	ln := doc.LeafNode
	if ln == nil {
		return nil
	}

	var out []Violation
	if ln.Port != 0 {
		if !validPort(ln.Port) {
			out = append(out, Violation{"LeafNode.Port", fmt.Sprintf("port %d outside valid range 1-65535", ln.Port)})
		}
		if ln.Port == doc.Port {
			out = append(out, Violation{"LeafNode.Port", fmt.Sprintf("leaf node port %d conflicts with main port", ln.Port)})
		}
	}

	out = append(out, validateAuthorization("LeafNode.Authorization", ln.Authorization)...)

	for i, subject := range ln.Imports {
		if err := validateSubject(subject); err != "" {
			out = append(out, Violation{fmt.Sprintf("LeafNode.Imports[%d]", i), err})
		}
	}
	for i, subject := range ln.Exports {
		if err := validateSubject(subject); err != "" {
			out = append(out, Violation{fmt.Sprintf("LeafNode.Exports[%d]", i), err})
		}
	}

	for i, remote := range ln.Remotes {
		if len(remote.URLs) == 0 {
			out = append(out, Violation{fmt.Sprintf("LeafNode.Remotes[%d]", i), "remote requires at least one URL"})
		}
	}

	return out
}

func validateCluster(doc *Document) []Violation {
	cl := doc.Cluster
	if cl == nil {
		return nil
	}

	var out []Violation
	if cl.Port != 0 {
		if !validPort(cl.Port) {
			out = append(out, Violation{"Cluster.Port", fmt.Sprintf("port %d outside valid range 1-65535", cl.Port)})
		}
		if cl.Port == doc.Port {
			out = append(out, Violation{"Cluster.Port", fmt.Sprintf("cluster port %d conflicts with main port", cl.Port)})
		}
		if cl.Name == "" {
			out = append(out, Violation{"Cluster.Name", "cluster name required when cluster port is set"})
		}
	}

	out = append(out, validateAuthorization("Cluster.Authorization", cl.Authorization)...)
	return out
}

// validateAuthorization enforces credential pairing: a user without a
// password is as invalid as a password without a user.
func validateAuthorization(path string, auth *AuthorizationConfig) []Violation {
	if auth == nil {
		return nil
	}
	var out []Violation
	if auth.User != "" && auth.Password == "" {
		out = append(out, Violation{path, fmt.Sprintf("user %q has no password", auth.User)})
	}
	if auth.Password != "" && auth.User == "" {
		out = append(out, Violation{path, "password set without a user"})
	}
	return out
}

func validateAccounts(accounts []Account) []Violation {
	var out []Violation
	seen := make(map[string]bool, len(accounts))
	for i, acct := range accounts {
		path := fmt.Sprintf("Accounts[%d]", i)
		if acct.Name == "" {
			out = append(out, Violation{path, "account name cannot be empty"})
		} else if seen[acct.Name] {
			out = append(out, Violation{path, fmt.Sprintf("duplicate account name %q", acct.Name)})
		}
		seen[acct.Name] = true

		for j, user := range acct.Users {
			userPath := fmt.Sprintf("%s.Users[%d]", path, j)
			if user.User != "" && user.Password == "" {
				out = append(out, Violation{userPath, fmt.Sprintf("user %q has no password", user.User)})
			}
			if user.Password != "" && user.User == "" {
				out = append(out, Violation{userPath, "password set without a user"})
			}
		}
	}
	return out
}

// validateSubject checks a subject pattern: dot-separated non-empty tokens,
// "*" matching exactly one token, ">" permitted only as the final token.
// Returns an empty string when valid.
func validateSubject(subject string) string {
	if subject == "" {
		return "subject cannot be empty"
	}

	tokens := strings.Split(subject, ".")
	for i, tok := range tokens {
		if tok == "" {
			return fmt.Sprintf("subject %q has an empty token", subject)
		}
		if tok == ">" {
			if i != len(tokens)-1 {
				return fmt.Sprintf("subject %q uses '>' before the final token", subject)
			}
			continue
		}
		if strings.ContainsAny(tok, ">") {
			return fmt.Sprintf("subject %q embeds '>' inside a token", subject)
		}
		if tok != "*" && strings.ContainsAny(tok, "*") {
			return fmt.Sprintf("subject %q embeds '*' inside a token", subject)
		}
		if strings.ContainsAny(tok, " \t") {
			return fmt.Sprintf("subject %q contains whitespace", subject)
		}
	}

	return ""
}
