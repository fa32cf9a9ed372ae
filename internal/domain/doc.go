// Package domain contains the core entities of the application: decks,
// cards with their spaced-repetition scheduling state, and review
// grades. Entities validate themselves; all persistence and scheduling
// logic lives in other packages.
package domain
