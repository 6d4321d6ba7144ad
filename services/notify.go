package services

import "encoding/json"

// PushToUser marshals the payload and writes it to the user's live
// WebSocket connections.
func PushToUser(userID int64, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	GlobalWSConnManager.Send(userID, jsonData)
	return nil
}
