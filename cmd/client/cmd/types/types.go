// Package types содержит ключи контекста, общие для команд CLI
package types

type contextKey string

// ClientAppKey — ключ, под которым в контексте команды лежит *client.App
const ClientAppKey contextKey = "clipsync-app"
