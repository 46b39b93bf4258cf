// Package domain contains entity without logic, just meta-data
package domain

type (
	// RoomID identifies one served community; unit of session partitioning.
	RoomID string
	// UserID identifies the requester of a track or command.
	UserID string
	// ChannelID identifies a text or audio channel inside a room.
	ChannelID string
	// MessageID identifies one panel message inside a channel.
	MessageID string
)
