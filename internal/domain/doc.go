// Package domain defines core data models and interfaces shared across the app.
// It contains plain types (wire/state) and contracts (interfaces) only.
//
// Backend entities other than the signed-in user (courses, enrollments,
// payments, attendance, notifications) are not modelled here; they travel as
// opaque JSON.
package domain
