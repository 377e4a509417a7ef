package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/zkfleet/zkfleet-core/internal/attendance"
)

// userHeader is the fixed column order of a roster export.
var userHeader = []string{"UID", "Name", "Privilege", "Password", "Group ID", "User ID", "Card"}

// UsersFilename builds the default roster export filename for a device:
// users_export_<ip with dots as underscores>_<timestamp>.csv.
func UsersFilename(deviceIP string, at time.Time) string {
	return fmt.Sprintf("users_export_%s_%s.csv",
		strings.ReplaceAll(deviceIP, ".", "_"),
		at.Format("20060102_150405"))
}

// WriteUsersCSV writes the roster to w in export column order.
func WriteUsersCSV(w io.Writer, users []attendance.UserRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(userHeader); err != nil {
		return fmt.Errorf("export: writing header: %w", err)
	}
	for _, u := range users {
		row := []string{
			strconv.Itoa(u.UID),
			u.Name,
			string(u.Privilege),
			u.Password,
			u.GroupID,
			u.UserID,
			u.Card,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: writing row for uid %d: %w", u.UID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: flushing: %w", err)
	}
	return nil
}

// SaveUsersCSV writes the roster of one device into dir using the default
// filename, creating dir if needed, and returns the full path.
func SaveUsersCSV(dir, deviceIP string, users []attendance.UserRecord) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: creating %s: %w", dir, err)
	}

	path := filepath.Join(dir, UsersFilename(deviceIP, time.Now()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("export: creating %s: %w", path, err)
	}

	if err := WriteUsersCSV(f, users); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("export: closing %s: %w", path, err)
	}
	return path, nil
}
