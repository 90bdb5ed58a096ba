package handlers

import (
	accountRepo "tillpoint/database/repository/account"
)

// HandlerBundle groups the assembled handlers and the repositories the route
// middleware needs.
type HandlerBundle struct {
	AccountRepo accountRepo.AccountRepository

	Auth    *AuthHandler
	Session *SessionHandler
}
