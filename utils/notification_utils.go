package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"firebase.google.com/go/v4/messaging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/gomail.v2"

	"github.com/salescrm/crm_backend/config"
	"github.com/salescrm/crm_backend/models"
)

// SaveNotification saves a notification to MongoDB and mirrors it into the
// Firestore "notifications" collection the dashboard subscribes to for
// real-time updates. The Firestore mirror is best-effort; a write failure is
// logged and the Mongo record remains the source of truth.
func SaveNotification(db *mongo.Client, notification *models.Notification) error {
	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	collection := config.GetCollection(db, "notifications")
	_, err := collection.InsertOne(context.Background(), notification)
	if err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}

	mirrorNotificationToFirestore(notification)
	return nil
}

// mirrorNotificationToFirestore writes the notification document to Firestore
func mirrorNotificationToFirestore(notification *models.Notification) {
	if config.FirebaseApp == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := config.FirebaseApp.Firestore(ctx)
	if err != nil {
		log.Printf("Error getting Firestore client: %v", err)
		return
	}
	defer client.Close()

	_, err = client.Collection("notifications").Doc(notification.ID.Hex()).Set(ctx, map[string]interface{}{
		"title":         notification.Title,
		"message":       notification.Message,
		"type":          notification.Type,
		"priority":      notification.Priority,
		"senderId":      notification.SenderID,
		"senderName":    notification.SenderName,
		"recipients":    notification.Recipients,
		"recipientRole": notification.RecipientRole,
		"createdAt":     notification.CreatedAt,
	})
	if err != nil {
		log.Printf("Error mirroring notification to Firestore: %v", err)
	}
}

// SendPushToUser sends an FCM push notification to a single user's device
func SendPushToUser(db *mongo.Client, userID primitive.ObjectID, title, message string, data map[string]string) error {
	var user models.User
	err := config.GetCollection(db, "users").FindOne(context.Background(), bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}

	if user.FCMToken == "" {
		return fmt.Errorf("user has no FCM token")
	}

	if config.FirebaseApp == nil {
		return fmt.Errorf("firebase app not initialized")
	}

	ctx := context.Background()
	client, err := config.FirebaseApp.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging client: %w", err)
	}

	if data == nil {
		data = map[string]string{}
	}
	if _, ok := data["timestamp"]; !ok {
		data["timestamp"] = time.Now().Format(time.RFC3339)
	}

	fcmMessage := &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  message,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "salescrm_fcm_channel",
			},
		},
	}

	response, err := client.Send(ctx, fcmMessage)
	if err != nil {
		return fmt.Errorf("failed to send push notification: %w", err)
	}

	log.Printf("Push notification sent: %s", response)
	return nil
}

// NotifyManagerOfDeal notifies the salesman's manager by email and in-app
// notification when a deal closes.
func NotifyManagerOfDeal(db *mongo.Client, deal *models.Deal) error {
	// Find the agent to resolve their team, then the team's manager
	agentID, err := primitive.ObjectIDFromHex(deal.SalesAgentID)
	if err != nil {
		return fmt.Errorf("invalid sales agent id: %w", err)
	}

	var agent models.User
	err = config.GetCollection(db, "users").FindOne(context.Background(), bson.M{"_id": agentID}).Decode(&agent)
	if err != nil {
		return fmt.Errorf("failed to find sales agent: %w", err)
	}

	// Managers are not team-scoped; every manager sees all deals, so any
	// manager account is a valid recipient.
	var manager models.User
	err = config.GetCollection(db, "users").FindOne(context.Background(), bson.M{"role": models.RoleManager}).Decode(&manager)
	if err != nil {
		return fmt.Errorf("failed to find manager: %w", err)
	}

	subject := "New Deal Closed"
	body := fmt.Sprintf("Dear %s,\n\n%s has closed a new deal for customer %s.\n\nBest regards,\nSales CRM", manager.FullName, agent.FullName, deal.CustomerName)
	if manager.Email != "" {
		if err := sendEmail(manager.Email, subject, body); err != nil {
			log.Printf("Failed to send deal email to manager: %v", err)
		}
	}

	notification := &models.Notification{
		Title:      "New Deal Closed",
		Message:    fmt.Sprintf("%s closed a deal for %s", agent.FullName, deal.CustomerName),
		Type:       "deal_created",
		Priority:   "normal",
		SenderID:   deal.SalesAgentID,
		SenderName: agent.FullName,
		Recipients: []string{manager.ID.Hex()},
		DealID:     &deal.ID,
	}
	return SaveNotification(db, notification)
}

// NotifyAgentOfOverdueCallback emails the callback's agent and saves an
// in-app notification when a scheduled callback passes without contact.
func NotifyAgentOfOverdueCallback(db *mongo.Client, callback *models.Callback) error {
	agentID, err := primitive.ObjectIDFromHex(callback.SalesAgentID)
	if err != nil {
		return fmt.Errorf("invalid sales agent id: %w", err)
	}

	var agent models.User
	err = config.GetCollection(db, "users").FindOne(context.Background(), bson.M{"_id": agentID}).Decode(&agent)
	if err != nil {
		return fmt.Errorf("failed to find sales agent: %w", err)
	}

	if agent.Email != "" {
		subject := "Callback Overdue"
		body := fmt.Sprintf("Dear %s,\n\nYour callback for %s scheduled on %s is overdue.\n\nBest regards,\nSales CRM", agent.FullName, callback.CustomerName, callback.ScheduledDate)
		if err := sendEmail(agent.Email, subject, body); err != nil {
			log.Printf("Failed to send overdue callback email: %v", err)
		}
	}

	notification := &models.Notification{
		Title:      "Callback Overdue",
		Message:    fmt.Sprintf("Callback for %s scheduled on %s is overdue", callback.CustomerName, callback.ScheduledDate),
		Type:       "callback_overdue",
		Priority:   "high",
		Recipients: []string{callback.SalesAgentID},
		CallbackID: &callback.ID,
	}
	return SaveNotification(db, notification)
}

// OverdueCallbackFilter matches pending callbacks scheduled strictly before
// the given day that have not been flagged as overdue yet. Scheduled dates
// are stored as "YYYY-MM-DD" strings, so lexical comparison orders them.
func OverdueCallbackFilter(now time.Time) bson.M {
	return bson.M{
		"status": models.CallbackStatusPending,
		"scheduledDate": bson.M{
			"$lt": now.Format("2006-01-02"),
			"$ne": "",
		},
		"overdueNotified": bson.M{"$ne": true},
	}
}

// SweepOverdueCallbacks notifies agents of pending callbacks whose scheduled
// date has passed. Each callback is flagged after the first notification so
// the sweep never reports it twice.
func SweepOverdueCallbacks(db *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection := config.GetCollection(db, "callbacks")
	cursor, err := collection.Find(ctx, OverdueCallbackFilter(time.Now()))
	if err != nil {
		log.Printf("Error scanning for overdue callbacks: %v", err)
		return
	}
	defer cursor.Close(ctx)

	var callbacks []models.Callback
	if err := cursor.All(ctx, &callbacks); err != nil {
		log.Printf("Error decoding overdue callbacks: %v", err)
		return
	}

	for i := range callbacks {
		cb := &callbacks[i]
		cb.Normalize()

		if err := NotifyAgentOfOverdueCallback(db, cb); err != nil {
			log.Printf("Error notifying agent of overdue callback %s: %v", cb.ID.Hex(), err)
			continue
		}

		update := bson.M{"$set": bson.M{"overdueNotified": true}}
		if _, err := collection.UpdateOne(ctx, bson.M{"_id": cb.ID}, update); err != nil {
			log.Printf("Error flagging overdue callback %s: %v", cb.ID.Hex(), err)
		}
	}
}

// sendEmail sends a plain text email through the configured SMTP relay
func sendEmail(to, subject, body string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	smtpPort := 2525
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &smtpPort)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", smtpUser)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	return d.DialAndSend(m)
}
