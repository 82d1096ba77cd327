package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// DocumentPageKey returns the cache key for one page of a user's document list
func (r *CacheKeyStruct) DocumentPageKey(userID string, page int) string {
	return fmt.Sprintf("user:%s:documents:page:%d", userID, page)
}

// DocumentPagePattern matches every cached document page of a user
func (r *CacheKeyStruct) DocumentPagePattern(userID string) string {
	return fmt.Sprintf("user:%s:documents:page:*", userID)
}

// DrawerKey returns the key holding the upload drawer visibility of a user
func (r *CacheKeyStruct) DrawerKey(userID string) string {
	return fmt.Sprintf("user:%s:ui:drawer", userID)
}

// GenerateDraftKey returns the key of a user's preserved quiz generation form
func (r *CacheKeyStruct) GenerateDraftKey(userID string) string {
	return fmt.Sprintf("user:%s:quiz_form:draft", userID)
}

// AttemptPayloadKey returns the cache key for a user's copy of an attempt's question sequence
func (r *CacheKeyStruct) AttemptPayloadKey(userID, attemptID string) string {
	return fmt.Sprintf("user:%s:attempt:%s:payload", userID, attemptID)
}

// AttemptStateKey returns the key holding a user's current-question pointer for an attempt
func (r *CacheKeyStruct) AttemptStateKey(userID, attemptID string) string {
	return fmt.Sprintf("user:%s:attempt:%s:state", userID, attemptID)
}

// NotificationChannel returns the Redis PubSub channel for a user's toasts
func (r *CacheKeyStruct) NotificationChannel(userID string) string {
	return fmt.Sprintf("user:%s:notifications", userID)
}

var CacheKey = NewCacheKeyStruct()
