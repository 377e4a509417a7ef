package attendance

import "strconv"

// NameIndex is a dual-keyed lookup from user identifiers to display names.
//
// Punch records may carry either identifier scheme — the device-internal
// numeric uid or the external user_id — so every roster entry is inserted
// under both keys. Last write wins on collision.
type NameIndex map[string]string

// BuildNameIndex indexes a normalized roster for name resolution.
func BuildNameIndex(users []UserRecord) NameIndex {
	idx := make(NameIndex, len(users)*2)
	for _, u := range users {
		idx[strconv.Itoa(u.UID)] = u.Name
		idx[u.UserID] = u.Name
	}
	return idx
}

// Resolve returns the display name for a punch, trying the uid key first and
// falling back to the user_id key. It never fails; an unmatched punch
// resolves to the empty string.
func (idx NameIndex) Resolve(uid int, userID string) string {
	if name := idx[strconv.Itoa(uid)]; name != "" {
		return name
	}
	return idx[userID]
}
