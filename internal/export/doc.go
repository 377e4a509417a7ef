// Package export renders roster and attendance data for humans: CSV files
// for spreadsheets and aligned ASCII tables for the terminal.
package export
