// Package compose builds the human-readable payloads for every
// notification kind. All functions are pure: they interpolate entity
// fields into fixed templates and never touch a transport. A zero-value
// field simply renders empty instead of failing composition.
package compose

import (
	"fmt"

	"github.com/pawfectcare/notifier/internal/domain"
)

// EmailContent is the subject/body pair queued as an email record.
type EmailContent struct {
	Subject string
	Body    string
}

// PushContent is the notification part plus the machine-readable data
// map that receiving clients use to route deep-links. Data always
// carries a "type" discriminant and the subject entity's natural keys.
type PushContent struct {
	Title string
	Body  string
	Data  map[string]string
}

// Event type discriminants carried in every data map.
const (
	TypeNewPet              = "new_pet"
	TypeAdoptionRequest     = "adoption_request"
	TypeAppointmentReminder = "appointment_reminder"
)

// NewPetData is shared between the push payload and the queued email
// record for a new-pet broadcast.
func NewPetData(pet *domain.Pet) map[string]string {
	return map[string]string{
		"type":    TypeNewPet,
		"petId":   pet.ID,
		"petName": pet.Name,
		"petType": pet.Species,
	}
}

func NewPetPush(pet *domain.Pet) PushContent {
	return PushContent{
		Title: "New Pet Available! 🐾",
		Body:  fmt.Sprintf("%s (%s) is now available for adoption", pet.Name, pet.Species),
		Data:  NewPetData(pet),
	}
}

func NewPetEmail(pet *domain.Pet, user *domain.User) EmailContent {
	return EmailContent{
		Subject: fmt.Sprintf("New Pet Available - %s", pet.Name),
		Body: fmt.Sprintf(`Hello %s,

Great news! A new pet is now available for adoption:

🐾 Pet Name: %s
🐕 Species: %s
🐕 Breed: %s
🏠 Age: %d years old
💚 Health Status: %s
💰 Adoption Fee: $%.0f

%s

Visit the app to learn more about this adorable pet and start the adoption process!

Best regards,
PawfectCare Team`,
			user.Name, pet.Name, pet.Species, pet.Breed, pet.Age,
			pet.HealthStatus, pet.AdoptionFee, pet.Description),
	}
}

func AdoptionRequestData(adoption *domain.Adoption, pet *domain.Pet) map[string]string {
	return map[string]string{
		"type":         TypeAdoptionRequest,
		"adoptionId":   adoption.ID,
		"petId":        adoption.PetID,
		"petName":      pet.Name,
		"adopterName":  adoption.AdopterName,
		"adopterEmail": adoption.AdopterEmail,
	}
}

func AdoptionRequestEmail(adoption *domain.Adoption, pet *domain.Pet, shelter *domain.Shelter) EmailContent {
	return EmailContent{
		Subject: fmt.Sprintf("New Adoption Request - %s", pet.Name),
		Body: fmt.Sprintf(`Hello %s,

You have received a new adoption request:

🐾 Pet: %s (%s - %s)
👤 Adopter: %s
📧 Email: %s
📞 Phone: %s
💭 Reason: %s

Please review this request and contact the adopter to proceed with the adoption process.

Best regards,
PawfectCare Team`,
			shelter.Name, pet.Name, pet.Species, pet.Breed,
			adoption.AdopterName, adoption.AdopterEmail,
			adoption.AdopterPhone, adoption.AdoptionReason),
	}
}

func AppointmentReminderData(appointment *domain.Appointment) map[string]string {
	return map[string]string{
		"type":            TypeAppointmentReminder,
		"appointmentId":   appointment.ID,
		"petName":         appointment.PetName,
		"appointmentType": appointment.AppointmentType,
	}
}

func AppointmentReminderPush(appointment *domain.Appointment) PushContent {
	return PushContent{
		Title: "Appointment Reminder 📅",
		Body:  fmt.Sprintf("Don't forget your appointment tomorrow for %s", appointment.PetName),
		Data:  AppointmentReminderData(appointment),
	}
}

func AppointmentReminderEmail(appointment *domain.Appointment, user *domain.User) EmailContent {
	return EmailContent{
		Subject: "Appointment Reminder - Tomorrow",
		Body: fmt.Sprintf(`Hello %s,

This is a reminder about your upcoming appointment:

🐾 Pet: %s
🏥 Type: %s
📅 Date: Tomorrow
⏰ Time: %s

Please arrive 10 minutes early for your appointment.

Best regards,
PawfectCare Team`,
			user.Name, appointment.PetName, appointment.AppointmentType, appointment.Time),
	}
}
