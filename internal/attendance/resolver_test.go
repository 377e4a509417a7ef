package attendance

import "testing"

func TestBuildNameIndexAndResolve(t *testing.T) {
	users := []UserRecord{
		{UID: 1, UserID: "E001", Name: "Ana"},
		{UID: 2, UserID: "E002", Name: "Bo"},
	}
	idx := BuildNameIndex(users)

	t.Run("resolves by uid key", func(t *testing.T) {
		if got := idx.Resolve(1, "no-such-id"); got != "Ana" {
			t.Errorf("Resolve() = %q, want Ana", got)
		}
	})

	t.Run("falls back to user id key", func(t *testing.T) {
		if got := idx.Resolve(999, "E002"); got != "Bo" {
			t.Errorf("Resolve() = %q, want Bo", got)
		}
	})

	t.Run("unmatched resolves to empty string", func(t *testing.T) {
		if got := idx.Resolve(999, "E999"); got != "" {
			t.Errorf("Resolve() = %q, want empty", got)
		}
	})
}

func TestBuildNameIndex_LastWriteWins(t *testing.T) {
	// Two roster entries colliding on the same user_id key: the later
	// entry's name wins.
	users := []UserRecord{
		{UID: 1, UserID: "E001", Name: "First"},
		{UID: 2, UserID: "E001", Name: "Second"},
	}
	idx := BuildNameIndex(users)

	if got := idx.Resolve(99, "E001"); got != "Second" {
		t.Errorf("Resolve() = %q, want Second (last write wins)", got)
	}
}

func TestResolve_UIDKeyTakesPrecedence(t *testing.T) {
	users := []UserRecord{
		{UID: 7, UserID: "E007", Name: "ByUID"},
		{UID: 8, UserID: "7", Name: "ByUserID"},
	}
	idx := BuildNameIndex(users)

	// uid 7 stringifies to "7", which entry two also claims as its
	// user_id; insertion order makes "ByUserID" the stored value under
	// that key, and uid-first resolution returns it.
	if got := idx.Resolve(7, "E007"); got != "ByUserID" {
		t.Errorf("Resolve() = %q, want ByUserID", got)
	}
}
