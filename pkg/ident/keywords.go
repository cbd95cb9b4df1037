package ident

import "strings"

// reserved holds the keywords an identifier may not collide with.
var reserved = map[string]struct{}{
	"select": {}, "from": {}, "where": {}, "join": {}, "inner": {},
	"outer": {}, "left": {}, "right": {}, "cross": {}, "on": {},
	"and": {}, "or": {}, "not": {}, "in": {}, "is": {},
	"null": {}, "as": {}, "by": {}, "group": {}, "order": {},
	"having": {}, "limit": {}, "offset": {}, "union": {}, "insert": {},
	"update": {}, "delete": {}, "drop": {}, "create": {}, "alter": {},
	"table": {}, "index": {}, "view": {}, "grant": {}, "revoke": {},
	"truncate": {}, "exec": {}, "execute": {}, "into": {}, "values": {},
	"set": {}, "case": {}, "when": {}, "then": {}, "else": {},
}

// IsReserved reports whether word is a reserved keyword, ignoring case.
func IsReserved(word string) bool {
	_, ok := reserved[strings.ToLower(word)]
	return ok
}

