package natsadapter

import (
	"testing"

	"github.com/samirrijal/devcamper/internal/core/domain"
)

func TestSubject(t *testing.T) {
	tests := []struct {
		ev   domain.DirectoryEvent
		want string
	}{
		{domain.DirectoryEvent{Kind: "bootcamp", Action: "created"}, "directory.bootcamp.created"},
		{domain.DirectoryEvent{Kind: "course", Action: "deleted"}, "directory.course.deleted"},
	}
	for _, tt := range tests {
		if got := Subject(&tt.ev); got != tt.want {
			t.Errorf("Subject(%+v) = %q, want %q", tt.ev, got, tt.want)
		}
	}
}
