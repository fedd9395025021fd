package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/websap/backend/internal/models"
)

func TestNotificationService_CreateAndList(t *testing.T) {
	svc := NewNotificationService(openTestDB(t), nil)
	alice, bob := uint(1), uint(2)

	_, err := svc.Create(&alice, models.NotificationTypeInfo, "Para Alice", "M1")
	require.NoError(t, err)
	_, err = svc.Create(&bob, models.NotificationTypeInfo, "Para Bob", "M2")
	require.NoError(t, err)
	n, err := svc.Create(nil, models.NotificationTypeSecurity, "Todos", "M3")
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.False(t, n.Read)

	list, err := svc.List(alice, false)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, svc.MarkAsRead(alice, n.ID))
	unread, err := svc.List(alice, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "Para Alice", unread[0].Title)

	require.NoError(t, svc.MarkAllAsRead(alice))
	unread, err = svc.List(alice, true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	bobs, err := svc.List(bob, true)
	require.NoError(t, err)
	assert.Len(t, bobs, 1, "marking as read does not touch other users' notifications")
}

func TestNotificationService_DeleteAndNotFound(t *testing.T) {
	svc := NewNotificationService(openTestDB(t), nil)
	alice, bob := uint(1), uint(2)

	n, err := svc.Create(&alice, models.NotificationTypeInfo, "N", "M")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.MarkAsRead(bob, n.ID), ErrNotificationNotFound)
	assert.ErrorIs(t, svc.Delete(bob, n.ID), ErrNotificationNotFound)
	require.NoError(t, svc.Delete(alice, n.ID))
	assert.ErrorIs(t, svc.Delete(alice, n.ID), ErrNotificationNotFound)
}

func TestNotificationService_PruneRead(t *testing.T) {
	db := openTestDB(t)
	svc := NewNotificationService(db, nil)

	old := &models.Notification{Title: "old", Read: true, CreatedAt: time.Now().Add(-100 * 24 * time.Hour)}
	oldUnread := &models.Notification{Title: "old-unread", Read: false, CreatedAt: time.Now().Add(-100 * 24 * time.Hour)}
	fresh := &models.Notification{Title: "fresh", Read: true}
	require.NoError(t, db.Create(old).Error)
	require.NoError(t, db.Create(oldUnread).Error)
	require.NoError(t, db.Create(fresh).Error)

	removed, err := svc.PruneRead(time.Now().Add(-90 * 24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestNotificationService_SendExternal(t *testing.T) {
	svc := NewNotificationService(openTestDB(t), []string{"generic://one", "generic://two"})

	var mu sync.Mutex
	var got []string
	svc.send = func(url, message string) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, url+"|"+message)
		if url == "generic://two" {
			return errors.New("unreachable")
		}
		return nil
	}

	svc.SendExternal("IP bloqueada", "9.9.9.9")
	assert.ElementsMatch(t, []string{
		"generic://one|IP bloqueada\n\n9.9.9.9",
		"generic://two|IP bloqueada\n\n9.9.9.9",
	}, got)
}

func TestNotificationService_SendExternalWithoutTargets(t *testing.T) {
	svc := NewNotificationService(openTestDB(t), nil)
	called := false
	svc.send = func(url, message string) error {
		called = true
		return nil
	}
	svc.SendExternal("t", "m")
	assert.False(t, called)
}

func TestNotificationService_AlertStoresBroadcast(t *testing.T) {
	svc := NewNotificationService(openTestDB(t), nil)
	svc.Alert("Ataque detectado", "wp-admin desde 1.2.3.4")

	list, err := svc.List(99, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationTypeSecurity, list[0].Type)
	assert.Nil(t, list[0].UserID)
}
