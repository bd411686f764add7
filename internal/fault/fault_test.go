package fault

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "plain",
			err:  New(NotFound, "car not found"),
			want: "car not found",
		},
		{
			name: "with ids",
			err:  New(Conflict, "locomotive already assigned").WithIDs("loco-1", "loco-2"),
			want: "locomotive already assigned (loco-1, loco-2)",
		},
		{
			name: "with details",
			err:  New(InvalidArgument, "car not assignable").WithDetails("car is out of service", "car type mismatch"),
			want: "car not assignable: car is out of service; car type mismatch",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	base := New(CannotRollback, "already at session 1")
	wrapped := fmt.Errorf("session: rollback: %w", base)
	if got := KindOf(wrapped); got != CannotRollback {
		t.Errorf("KindOf(wrapped) = %q, want %q", got, CannotRollback)
	}
}

func TestKindOf_NotFault(t *testing.T) {
	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("KindOf(plain) = %q, want empty", got)
	}
	if got := KindOf(nil); got != "" {
		t.Errorf("KindOf(nil) = %q, want empty", got)
	}
}

func TestStore_UnwrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Store(cause, "write car")
	if !errors.Is(err, cause) {
		t.Error("Store() should wrap the cause for errors.Is")
	}
	if !IsKind(err, StoreError) {
		t.Errorf("IsKind(StoreError) = false, kind = %q", KindOf(err))
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Error() should include cause: %s", err.Error())
	}
}
