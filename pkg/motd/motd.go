// pkg/motd/motd.go

package motd

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/shared"
	cerr "github.com/cockroachdb/errors"
	"github.com/google/renameio/v2"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Publisher writes the boot-status banner shown at login.
type Publisher struct {
	Path string
}

func NewPublisher() *Publisher {
	return &Publisher{Path: shared.MotdPath}
}

// Publish replaces the banner atomically so a crash never leaves half a file.
func (p *Publisher) Publish(ctx context.Context, message string) error {
	if err := os.MkdirAll(filepath.Dir(p.Path), shared.DirPermStandard); err != nil {
		return cerr.Wrapf(err, "create %s", filepath.Dir(p.Path))
	}
	if !strings.HasSuffix(message, "\n") {
		message += "\n"
	}
	if err := renameio.WriteFile(p.Path, []byte(message), shared.FilePermStandard); err != nil {
		return cerr.Wrapf(err, "write motd %s", p.Path)
	}
	otelzap.Ctx(ctx).Info("motd set", zap.String("path", p.Path), zap.String("message", strings.TrimSpace(message)))
	return nil
}
