package common

import (
	"crypto/sha256"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"

	NA = "N/A"
)

var (
	snowflakeNode *snowflake.Node
	snowflakeOnce sync.Once
)

// UUIDint64 returns a process-unique int64 identifier backed by a snowflake node.
func UUIDint64() int64 {
	snowflakeOnce.Do(func() {
		var err error
		snowflakeNode, err = snowflake.NewNode(1)
		if err != nil {
			panic(err)
		}
	})
	return snowflakeNode.Generate().Int64()
}

// UUID returns a random UUID string, used for client-facing identifiers
// such as receipt numbers and sync batch ids.
func UUID() string {
	return uuid.NewString()
}

// GetSecretSalt reads the shared secret salt from the environment, falling
// back to a fixed development value.
func GetSecretSalt() string {
	salt := os.Getenv("RESTOS_SECRET_SALT")
	if salt == "" {
		return "restos-secret"
	}
	return salt
}

// Sha256HashWithSalt hashes src with the given salt.
func Sha256HashWithSalt(src, salt string) string {
	h := sha256.New()
	h.Write([]byte(src))
	h.Write([]byte(salt))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// InSlice reports whether v is present in vals.
func InSlice(v string, vals []string) bool {
	for _, s := range vals {
		if s == v {
			return true
		}
	}
	return false
}

// SplitAndTrim splits a comma separated string, dropping empty elements.
func SplitAndTrim(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
