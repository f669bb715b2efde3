// Package xid generates prefixed unique identifiers such as inv_9f2c...
package xid

import (
	"strings"

	"github.com/google/uuid"
)

// New returns prefix + "_" + a dashless uuid.
func New(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
