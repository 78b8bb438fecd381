package intent

import (
	"regexp"
	"strings"
)

// YesNo is the classification of a confirmation answer.
type YesNo int

const (
	Unclassified YesNo = iota
	Yes
	No
)

func (v YesNo) String() string {
	switch v {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "unclassified"
	}
}

var (
	yesPattern = regexp.MustCompile(`(?i)^(yes|yea|yup|yep|ya|sure|ok|okay|y|yeah|yah)\b`)
	noPattern  = regexp.MustCompile(`(?i)^(no|nah|nope|n)\b`)
)

// ClassifyYesNo reports whether text opens with an affirmative or negative token.
func ClassifyYesNo(text string) YesNo {
	text = strings.TrimSpace(text)
	switch {
	case yesPattern.MatchString(text):
		return Yes
	case noPattern.MatchString(text):
		return No
	default:
		return Unclassified
	}
}
