package idgen

import (
	"github.com/google/uuid"
)

// ID prefixes for dayguard's entities.
const (
	PrefixProfile   = "prof_"
	PrefixSession   = "sess_"
	PrefixActivity  = "act_"
	PrefixException = "exc_"
	PrefixRequest   = "req_"
	PrefixAudit     = "aud_"
)

func NewProfile() string   { return PrefixProfile + uuid.New().String() }
func NewSession() string   { return PrefixSession + uuid.New().String() }
func NewActivity() string  { return PrefixActivity + uuid.New().String() }
func NewException() string { return PrefixException + uuid.New().String() }
func NewRequest() string   { return PrefixRequest + uuid.New().String() }
func NewAudit() string     { return PrefixAudit + uuid.New().String() }

// New generates a generic UUID without a prefix, for internal use only.
func New() string {
	return uuid.New().String()
}
