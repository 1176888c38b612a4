package domain

import (
	interfaces "primis/internal/domain/interfaces"
	types "primis/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	UserType         = types.UserType
	Profile          = types.Profile
	Credentials      = types.Credentials
	AuthToken        = types.AuthToken
	CurrentUser      = types.CurrentUser
	RegisterData     = types.RegisterData
	ForgotPassword   = types.ForgotPassword
	ResetPassword    = types.ResetPassword
	ChangePassword   = types.ChangePassword
	Session          = types.Session
	PersistedSession = types.PersistedSession
	LoginResult      = types.LoginResult
	Invalidation     = types.Invalidation
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	Storage        = interfaces.Storage
	AuthAPI        = interfaces.AuthAPI
	SessionService = interfaces.SessionService
)

const (
	UserTypeStudent = types.UserTypeStudent
	UserTypeTeacher = types.UserTypeTeacher
	UserTypeAdmin   = types.UserTypeAdmin
	UserTypeParent  = types.UserTypeParent
)

// Storage keys shared by the API client and the session store.
const (
	TokenKey    = "access_token"
	SnapshotKey = "auth-storage"
)

// LoginRoute is where a client is sent after its session is invalidated.
const LoginRoute = "/login"
