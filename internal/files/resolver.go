// Package files is the boundary to the host runtime's file uploads. Tools
// receive opaque handles; a Resolver turns a handle into attachment bytes.
package files

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/brandon/mcp-blastengine/internal/mailer"
)

// Resolver resolves a host-provided file handle into an attachment.
type Resolver interface {
	Resolve(handle string) (mailer.Attachment, error)
}

// DiskResolver resolves handles as filesystem paths. This is the resolver
// used with stdio transport, where the host passes local paths.
type DiskResolver struct{}

func (DiskResolver) Resolve(handle string) (mailer.Attachment, error) {
	content, err := os.ReadFile(handle)
	if err != nil {
		return mailer.Attachment{}, fmt.Errorf("reading file %s: %w", handle, err)
	}
	return mailer.Attachment{
		Filename: filepath.Base(handle),
		Content:  content,
	}, nil
}

// ResolveAll resolves a list of handles, failing on the first unreadable one.
func ResolveAll(r Resolver, handles []string) ([]mailer.Attachment, error) {
	if len(handles) == 0 {
		return nil, nil
	}
	atts := make([]mailer.Attachment, 0, len(handles))
	for _, handle := range handles {
		att, err := r.Resolve(handle)
		if err != nil {
			return nil, err
		}
		atts = append(atts, att)
	}
	return atts, nil
}
