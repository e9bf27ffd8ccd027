// Package ssh generates the user's SSH key pair.
package ssh

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/felixgeelhaar/wslup/internal/domain/provision"
	"github.com/felixgeelhaar/wslup/internal/ports"
)

// KeyStep makes sure an ed25519 key pair exists. An existing private key is
// never replaced; a missing public half is derived from it.
type KeyStep struct {
	path    string
	comment string
	fs      ports.FileSystem
	runner  ports.CommandRunner
}

// NewKeyStep creates the ssh:key step for the private key at path.
func NewKeyStep(path, comment string, fs ports.FileSystem, runner ports.CommandRunner) *KeyStep {
	return &KeyStep{
		path:    ports.ExpandPath(path),
		comment: comment,
		fs:      fs,
		runner:  runner,
	}
}

// Name returns "ssh:key".
func (s *KeyStep) Name() string {
	return "ssh:key"
}

// Description returns a human-readable description.
func (s *KeyStep) Description() string {
	return "Generate an ed25519 SSH key"
}

func (s *KeyStep) pubPath() string {
	return s.path + ".pub"
}

// Check reports Present when both halves of the key pair exist.
func (s *KeyStep) Check(_ provision.RunContext) (provision.Presence, error) {
	if s.fs.Exists(s.path) && s.fs.Exists(s.pubPath()) {
		return provision.Present, nil
	}
	return provision.Absent, nil
}

// Apply generates the key pair in process, or only the public key when the
// private key already exists.
func (s *KeyStep) Apply(ctx provision.RunContext) error {
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(s.path), err)
	}

	if s.fs.Exists(s.path) {
		pub, err := s.publicFromPrivate()
		if err != nil {
			return err
		}
		ctx.Logger().Info(ctx.Context(), "deriving missing public key", ports.F("path", s.pubPath()))
		return s.fs.WriteFile(s.pubPath(), s.authorizedLine(pub), 0o644)
	}

	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("generate ed25519 key: %w", err)
	}
	block, err := ssh.MarshalPrivateKey(privKey, s.comment)
	if err != nil {
		return fmt.Errorf("encode private key: %w", err)
	}
	pub, err := ssh.NewPublicKey(pubKey)
	if err != nil {
		return fmt.Errorf("encode public key: %w", err)
	}

	if err := s.fs.WriteFile(s.path, pem.EncodeToMemory(block), 0o600); err != nil {
		return err
	}
	return s.fs.WriteFile(s.pubPath(), s.authorizedLine(pub), 0o644)
}

// Fallback runs ssh-keygen. It only runs when no private key exists.
func (s *KeyStep) Fallback(ctx provision.RunContext) error {
	if s.fs.Exists(s.path) {
		return provision.Skip("private key exists; not regenerating")
	}
	return ports.Exec(ctx.Context(), s.runner, "ssh-keygen", "-q", "-t", "ed25519", "-N", "", "-C", s.comment, "-f", s.path)
}

// Verify parses both halves and checks that they belong together.
func (s *KeyStep) Verify(_ provision.RunContext) error {
	fromPrivate, err := s.publicFromPrivate()
	if err != nil {
		return err
	}

	data, err := s.fs.ReadFile(s.pubPath())
	if err != nil {
		return err
	}
	pub, _, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", s.pubPath(), err)
	}
	if pub.Type() != ssh.KeyAlgoED25519 {
		return fmt.Errorf("%s is a %s key, want %s", s.pubPath(), pub.Type(), ssh.KeyAlgoED25519)
	}
	if !bytes.Equal(pub.Marshal(), fromPrivate.Marshal()) {
		return fmt.Errorf("%s does not match %s", s.pubPath(), s.path)
	}
	return nil
}

// publicFromPrivate parses the private key. Passphrase-protected keys still
// expose their public half.
func (s *KeyStep) publicFromPrivate() (ssh.PublicKey, error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	signer, err := ssh.ParsePrivateKey(data)
	if err == nil {
		return signer.PublicKey(), nil
	}
	var missing *ssh.PassphraseMissingError
	if errors.As(err, &missing) && missing.PublicKey != nil {
		return missing.PublicKey, nil
	}
	return nil, fmt.Errorf("parse %s: %w", s.path, err)
}

func (s *KeyStep) authorizedLine(pub ssh.PublicKey) []byte {
	line := strings.TrimSuffix(string(ssh.MarshalAuthorizedKey(pub)), "\n")
	if s.comment != "" {
		line += " " + s.comment
	}
	return []byte(line + "\n")
}
