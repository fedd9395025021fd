package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/containrrr/shoutrrr"
	"gorm.io/gorm"

	"github.com/websap/backend/internal/logger"
	"github.com/websap/backend/internal/models"
)

var ErrNotificationNotFound = errors.New("notificación no encontrada")

type NotificationService struct {
	DB        *gorm.DB
	alertURLs []string
	send      func(url, message string) error
}

// NewNotificationService stores in-app notifications in db and forwards
// security alerts to alertURLs (shoutrrr service URLs).
func NewNotificationService(db *gorm.DB, alertURLs []string) *NotificationService {
	return &NotificationService{DB: db, alertURLs: alertURLs, send: shoutrrrSend}
}

func shoutrrrSend(url, message string) error {
	return shoutrrr.Send(url, message)
}

// Internal Notifications (DB)

// Create stores a notification for userID, or for everybody when userID is nil.
func (s *NotificationService) Create(userID *uint, nType models.NotificationType, title, message string) (*models.Notification, error) {
	notification := &models.Notification{
		UserID:  userID,
		Type:    nType,
		Title:   title,
		Message: message,
		Read:    false,
	}
	result := s.DB.Create(notification)
	return notification, result.Error
}

// List returns the notifications visible to userID, newest first.
func (s *NotificationService) List(userID uint, unreadOnly bool) ([]models.Notification, error) {
	var notifications []models.Notification
	query := s.visibleTo(userID).Order("created_at desc")
	if unreadOnly {
		query = query.Where(map[string]interface{}{"read": false})
	}
	result := query.Find(&notifications)
	return notifications, result.Error
}

func (s *NotificationService) MarkAsRead(userID uint, id string) error {
	res := s.visibleTo(userID).Where("id = ?", id).Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(userID uint) error {
	return s.visibleTo(userID).Where(map[string]interface{}{"read": false}).Update("read", true).Error
}

func (s *NotificationService) Delete(userID uint, id string) error {
	res := s.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// PruneRead deletes read notifications created before before.
func (s *NotificationService) PruneRead(before time.Time) (int64, error) {
	res := s.DB.Where(map[string]interface{}{"read": true}).Where("created_at < ?", before).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

func (s *NotificationService) visibleTo(userID uint) *gorm.DB {
	return s.DB.Model(&models.Notification{}).Where("user_id = ? OR user_id IS NULL", userID)
}

// External Notifications (Shoutrrr)

// SendExternal delivers title and message to every configured alert URL and
// waits for the deliveries. Failures are logged, never returned.
func (s *NotificationService) SendExternal(title, message string) {
	if len(s.alertURLs) == 0 {
		return
	}
	msg := fmt.Sprintf("%s\n\n%s", title, message)

	var wg sync.WaitGroup
	for i, url := range s.alertURLs {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			if err := s.send(url, msg); err != nil {
				// The URL may embed credentials; log its position only.
				logger.Component("notifications").WithError(err).WithField("target", i).Warn("failed to send alert")
			}
		}(i, url)
	}
	wg.Wait()
}

// Alert records a broadcast security notification and forwards it to the
// external alert targets in the background.
func (s *NotificationService) Alert(title, message string) {
	if _, err := s.Create(nil, models.NotificationTypeSecurity, title, message); err != nil {
		logger.Component("notifications").WithError(err).Error("failed to store security notification")
	}
	go s.SendExternal(title, message)
}
