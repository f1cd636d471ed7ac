package cli

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("deploy.prefix", "must not be empty")
	if !strings.Contains(err.Error(), "deploy.prefix") {
		t.Errorf("Error() = %q", err.Error())
	}

	bare := NewConfigError("", "file not found")
	if strings.Contains(bare.Error(), "in :") {
		t.Errorf("Error() = %q", bare.Error())
	}
}

func TestCommandErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewCommandError("deploy", cause)
	if !errors.Is(err, cause) {
		t.Errorf("cause not wrapped")
	}
	if !strings.Contains(err.Error(), "deploy") {
		t.Errorf("Error() = %q", err.Error())
	}
}
