// Package domain defines the data models and contracts shared across the app.
// It contains plain types (wire/state) and interfaces only.
//
// Protocol packages import domain/types directly; only services, stores and
// the app layer use the aliases here.
package domain
