// Package memory содержит потокобезопасные реализации репозиториев в памяти.
// Используются в тестах usecase- и handler-слоёв вместо PostgreSQL и redis.
package memory
