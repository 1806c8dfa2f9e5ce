package identity

import (
	"net/url"
	"regexp"
	"strings"
)

// mentionPattern matches the pills Matrix clients produce on tab completion:
// <a href="https://matrix.to/#/@zodbot:fedora.im">zodbot</a>
var mentionPattern = regexp.MustCompile(`href=['"]?http[s]?://matrix\.to/#/([^'" >]+)['" >]`)

// SubjectKind says which identifier space a command argument belongs to
type SubjectKind int

const (
	// SubjectSender means no subject was given; the invoker is the subject
	SubjectSender SubjectKind = iota
	// SubjectMatrixID means a Matrix user ID, typed or mentioned
	SubjectMatrixID
	// SubjectAccountName means a bare Fedora Accounts username
	SubjectAccountName
)

// Subject is the outcome of classifying a command argument
type Subject struct {
	Name     string
	MatrixID MatrixID
	Kind     SubjectKind
}

// ExtractMentions returns the distinct mention targets in a formatted body,
// percent-decoded, in order of first appearance
func ExtractMentions(formattedBody string) []string {
	if formattedBody == "" {
		return nil
	}

	var mentions []string
	seen := make(map[string]struct{})
	for _, m := range mentionPattern.FindAllStringSubmatch(formattedBody, -1) {
		target := m[1]
		if decoded, err := url.PathUnescape(target); err == nil {
			target = decoded
		}
		// matrix.to permalinks may carry ?via= routing hints
		target, _, _ = strings.Cut(target, "?")
		if _, dup := seen[target]; dup {
			continue
		}
		seen[target] = struct{}{}
		mentions = append(mentions, target)
	}
	return mentions
}

// Classify decides who a command argument refers to without touching the
// directory. Mentions in the formatted body win over the typed argument.
func Classify(raw string, msg Message) (Subject, error) {
	mentions := ExtractMentions(msg.FormattedBody)
	if len(mentions) > 1 {
		return Subject{}, ambiguousSubject()
	}
	if len(mentions) == 1 {
		id, err := ParseMatrixID(mentions[0])
		if err != nil {
			return Subject{}, err
		}
		return Subject{Kind: SubjectMatrixID, MatrixID: id}, nil
	}

	tokens := strings.Fields(raw)
	switch len(tokens) {
	case 0:
		return Subject{Kind: SubjectSender}, nil
	case 1:
	default:
		return Subject{}, ambiguousSubject()
	}

	token := tokens[0]
	if LooksLikeMatrixID(token) {
		id, err := ParseMatrixID(token)
		if err != nil {
			return Subject{}, err
		}
		return Subject{Kind: SubjectMatrixID, MatrixID: id}, nil
	}
	return Subject{Kind: SubjectAccountName, Name: token}, nil
}
