package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesReason(t *testing.T) {
	err := fmt.Errorf("complete task: %w", New(AlreadyDoneByOther, "task %d", 4))

	assert.True(t, errors.Is(err, AlreadyDoneByOther))
	assert.False(t, errors.Is(err, AlreadyDoneToday))
	assert.Equal(t, Conflict, KindOf(err))
	assert.Equal(t, "complete task: already_done_by_other: task 4", err.Error())
}

func TestKinds(t *testing.T) {
	cases := map[Reason]Kind{
		NotAssigned:        Permission,
		AdminOnly:          Permission,
		AlreadyDoneToday:   Conflict,
		InvalidPercentages: Validation,
		CompletionNotFound: NotFound,
	}
	for r, want := range cases {
		assert.Equal(t, want, r.Kind(), string(r))
	}
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Kind(0), KindOf(errors.New("boom")))
	_, ok := As(errors.New("boom"))
	assert.False(t, ok)
}
