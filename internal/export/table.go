package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zkfleet/zkfleet-core/internal/attendance"
	"github.com/zkfleet/zkfleet-core/internal/fleet"
)

// writeTable renders rows as an aligned ASCII table: a header, a rule of
// dashes joined with -+-, then the rows. Column widths fit the widest cell.
func writeTable(w io.Writer, header []string, rows [][]string) error {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	writeRow := func(cells []string) error {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		_, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, " | "), " "))
		return err
	}

	if err := writeRow(header); err != nil {
		return err
	}
	rule := make([]string, len(widths))
	for i, width := range widths {
		rule[i] = strings.Repeat("-", width)
	}
	if _, err := fmt.Fprintln(w, strings.Join(rule, "-+-")); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeRow(row); err != nil {
			return err
		}
	}
	return nil
}

// PrintUsers renders a roster table.
func PrintUsers(w io.Writer, users []attendance.UserRecord) error {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			strconv.Itoa(u.UID), u.UserID, u.Name, string(u.Privilege), u.GroupID, u.Card,
		})
	}
	return writeTable(w, []string{"UID", "User ID", "Name", "Privilege", "Group", "Card"}, rows)
}

// PrintAttendance renders a punch-log table, resolving names through the
// given index.
func PrintAttendance(w io.Writer, events []attendance.AttendanceEvent, names attendance.NameIndex) error {
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			e.UserID,
			names.Resolve(e.UID, e.UserID),
			e.FormattedTime(),
			e.Status.Label(),
			strconv.Itoa(e.Punch),
		})
	}
	return writeTable(w, []string{"User ID", "Name", "Timestamp", "Status", "Punch"}, rows)
}

// PrintDevices renders the registry table.
func PrintDevices(w io.Writer, devices []fleet.DeviceDescriptor) error {
	rows := make([][]string, 0, len(devices))
	for _, d := range devices {
		rows = append(rows, []string{d.IP, d.Name, d.Location, d.Status})
	}
	return writeTable(w, []string{"IP", "Name", "Location", "Status"}, rows)
}

// PrintDeviceDetail renders one descriptor as a field/value table, including
// the fields the fleet listing omits.
func PrintDeviceDetail(w io.Writer, d fleet.DeviceDescriptor) error {
	rows := [][]string{
		{"IP", d.IP},
		{"Name", d.Name},
		{"Location", d.Location},
		{"Status", d.Status},
		{"Installed", d.DateInstalled},
		{"Expires", d.DateExpired},
		{"Notes", d.Notes},
	}
	return writeTable(w, []string{"Field", "Value"}, rows)
}
