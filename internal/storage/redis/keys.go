package redis

import "github.com/mcoot/boardbank/internal/model"

// keyPrefix namespaces every key this store writes
const keyPrefix = "boardbank:"

func sessionKey(id model.SessionID) string {
	return keyPrefix + "session:" + string(id)
}
