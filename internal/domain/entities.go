package domain

import "time"

// NotificationSettings are the per-user opt-in flags. The pointer may
// be nil when the user never saved settings; every accessor treats nil
// as opted out (default-deny).
type NotificationSettings struct {
	NewPets            bool `json:"newPets"`
	Appointments       bool `json:"appointments"`
	EmailNotifications bool `json:"emailNotifications"`
}

func (s *NotificationSettings) WantsNewPets() bool {
	return s != nil && s.NewPets
}

func (s *NotificationSettings) WantsAppointments() bool {
	return s != nil && s.Appointments
}

func (s *NotificationSettings) WantsEmail() bool {
	return s != nil && s.EmailNotifications
}

// User is a platform account. FCMTokens may contain stale entries;
// a send to a dead token must not block the rest.
type User struct {
	ID        string                `json:"id"`
	Email     string                `json:"email"`
	Name      string                `json:"name"`
	FCMTokens []string              `json:"fcm_tokens"`
	Settings  *NotificationSettings `json:"notification_settings,omitempty"`
}

// Pet is an adoptable animal listed by a shelter.
type Pet struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Species      string  `json:"species"`
	Breed        string  `json:"breed"`
	Age          int     `json:"age"`
	HealthStatus string  `json:"health_status"`
	AdoptionFee  float64 `json:"adoption_fee"`
	Description  string  `json:"description"`
	ShelterID    string  `json:"shelter_id"`
}

// Shelter owns pets and receives adoption-request notifications.
type Shelter struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Adoption is a user's request to adopt a pet.
type Adoption struct {
	ID             string `json:"id"`
	PetID          string `json:"pet_id"`
	AdopterName    string `json:"adopter_name"`
	AdopterEmail   string `json:"adopter_email"`
	AdopterPhone   string `json:"adopter_phone"`
	AdoptionReason string `json:"adoption_reason"`
}

// AppointmentStatusConfirmed is the only status the reminder job
// considers; pending and cancelled appointments get no reminder.
const AppointmentStatusConfirmed = "confirmed"

// Appointment is a scheduled visit (vet, grooming, adoption meeting).
type Appointment struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	PetName         string    `json:"pet_name"`
	AppointmentType string    `json:"appointment_type"`
	Date            time.Time `json:"appointment_date"`
	Time            string    `json:"appointment_time"`
	Status          string    `json:"status"`
}
