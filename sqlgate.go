package main

import (
	"regexp"
	"strings"
)

var writeKeywordRe = regexp.MustCompile(`(?i)\b(insert|alter|drop|create|truncate|optimize|attach|detach|system|grant|revoke|delete|update|rename|kill)\b`)

// Very simple local safety gate for the ClickHouse row source:
// - SELECT/WITH only
// - reject DDL/DML keywords
// - reject multi-statement (semicolons) except a single trailing one.
func validateQuery(sqlText string) (clean string, ok bool, reason string) {
	s := stripLeadingComments(sqlText)
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false, "empty sql"
	}

	// allow a single trailing semicolon
	if strings.Contains(s, ";") {
		if strings.HasSuffix(s, ";") && strings.Count(s, ";") == 1 {
			s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
		} else {
			return "", false, "multi-statement queries are not allowed"
		}
	}

	l := strings.ToLower(s)
	if !(strings.HasPrefix(l, "select") || strings.HasPrefix(l, "with")) {
		return "", false, "only SELECT queries are allowed"
	}
	if kw := writeKeywordRe.FindString(s); kw != "" {
		return "", false, "query rejected (" + strings.ToLower(kw) + " detected)"
	}
	return s, true, ""
}

func stripLeadingComments(s string) string {
	for {
		s = strings.TrimSpace(s)
		if strings.HasPrefix(s, "--") {
			if i := strings.Index(s, "\n"); i >= 0 {
				s = s[i+1:]
				continue
			}
			return ""
		}
		if strings.HasPrefix(s, "/*") {
			if i := strings.Index(s, "*/"); i >= 0 {
				s = s[i+2:]
				continue
			}
			return ""
		}
		return s
	}
}
