package attendance

import "strings"

// FilterByUserID returns the roster entries whose user_id matches exactly.
func FilterByUserID(users []UserRecord, userID string) []UserRecord {
	var matched []UserRecord
	for _, u := range users {
		if u.UserID == userID {
			matched = append(matched, u)
		}
	}
	return matched
}

// FilterByName returns roster entries whose name contains the query,
// case-insensitively.
func FilterByName(users []UserRecord, query string) []UserRecord {
	q := strings.ToLower(query)
	var matched []UserRecord
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), q) {
			matched = append(matched, u)
		}
	}
	return matched
}

// Admins returns the roster entries holding admin privilege.
func Admins(users []UserRecord) []UserRecord {
	var matched []UserRecord
	for _, u := range users {
		if u.Privilege == PrivilegeAdmin {
			matched = append(matched, u)
		}
	}
	return matched
}
