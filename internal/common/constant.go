package common

// SessionCookieName is the HTTP cookie that carries the server-side
// session token on inbound requests.
const SessionCookieName = "missionset_session"
