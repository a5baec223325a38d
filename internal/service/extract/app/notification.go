package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// notification is the bucket-event payload published by the upstream storage
// notification system. Only the first record's object key is consumed.
type notification struct {
	Records []struct {
		S3 struct {
			Object struct {
				Key string `json:"key"`
			} `json:"object"`
		} `json:"s3"`
	} `json:"Records"`
}

// objectKey pulls the input object's storage key out of a notification body.
// Keys arrive percent-encoded (spaces as '+') and are decoded before use.
func objectKey(body []byte) (string, error) {
	var n notification
	if err := json.Unmarshal(body, &n); err != nil {
		return "", fmt.Errorf("decode notification: %w", err)
	}
	if len(n.Records) == 0 {
		return "", errors.New("notification has no records")
	}
	key, err := url.QueryUnescape(n.Records[0].S3.Object.Key)
	if err != nil {
		return "", fmt.Errorf("decode object key: %w", err)
	}
	if key == "" {
		return "", errors.New("notification record has no object key")
	}
	return key, nil
}
