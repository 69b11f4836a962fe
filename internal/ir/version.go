package ir

// Version is the craterreport release version.
// It is sent in the User-Agent of every outgoing request.
const Version = "0.1.0"
