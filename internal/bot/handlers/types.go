// Package handlers contains the update handlers and the adapter exposing
// telebot updates to the ban core.
package handlers

import (
	telebot "gopkg.in/telebot.v3"
)

// Handler processes one Telegram update.
type Handler func(c telebot.Context) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler
