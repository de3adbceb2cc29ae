// Package keys строит ключи TTL хранилища. Все ключи комнаты лежат под
// префиксом room:<roomID>:.
package keys

import "fmt"

const prefixRoom = "room:"

func RoomMembers(roomID string) string {
	return fmt.Sprintf("%s%s:members", prefixRoom, roomID)
}

func RoomMember(roomID, userID string) string {
	return fmt.Sprintf("%s%s:member:%s", prefixRoom, roomID, userID)
}

func RoomDescriptions(roomID string) string {
	return fmt.Sprintf("%s%s:descriptions", prefixRoom, roomID)
}

func RoomCandidates(roomID string) string {
	return fmt.Sprintf("%s%s:candidates", prefixRoom, roomID)
}

func RoomMessages(roomID string) string {
	return fmt.Sprintf("%s%s:messages", prefixRoom, roomID)
}
