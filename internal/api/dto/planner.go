package dto

import (
	"encoding/json"
	"time"

	"github.com/hugh/muse/internal/api/validation"
	"github.com/hugh/muse/internal/database/models"
	"github.com/shopspring/decimal"
)

type EventTypeDTO struct {
	ID                      uint   `json:"id"`
	Key                     string `json:"key"`
	NameEn                  string `json:"name_en"`
	NameAr                  string `json:"name_ar"`
	DefaultColorHex         string `json:"default_color_hex"`
	DefaultMoodboardEnabled bool   `json:"default_moodboard_enabled"`
}

func NewEventTypeDTO(et *models.EventType) EventTypeDTO {
	return EventTypeDTO{
		ID:                      et.ID,
		Key:                     et.Key,
		NameEn:                  et.NameEn,
		NameAr:                  et.NameAr,
		DefaultColorHex:         et.DefaultColorHex,
		DefaultMoodboardEnabled: et.DefaultMoodboardEnabled,
	}
}

type BudgetCategoryDTO struct {
	ID                uint   `json:"id"`
	Key               string `json:"key"`
	Label             string `json:"label"`
	SortOrder         int    `json:"sort_order"`
	IsDefaultForOmani bool   `json:"is_default_for_omani"`
}

func NewBudgetCategoryDTO(c *models.BudgetCategory) BudgetCategoryDTO {
	return BudgetCategoryDTO{
		ID:                c.ID,
		Key:               c.Key,
		Label:             c.Label,
		SortOrder:         c.SortOrder,
		IsDefaultForOmani: c.IsDefaultForOmani,
	}
}

type EventDTO struct {
	ID          uint          `json:"id"`
	EventType   *EventTypeDTO `json:"event_type"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	StartDate   *string       `json:"start_date"`
	EndDate     *string       `json:"end_date"`
	IsActive    bool          `json:"is_active"`
}

func NewEventDTO(e *models.Event) EventDTO {
	out := EventDTO{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		StartDate:   FormatDate(e.StartDate),
		EndDate:     FormatDate(e.EndDate),
		IsActive:    e.IsActive,
	}
	if e.EventType != nil {
		et := NewEventTypeDTO(e.EventType)
		out.EventType = &et
	}
	return out
}

// CalendarItemDTO is the flat event shape used by the calendar and dashboard.
type CalendarItemDTO struct {
	ID        uint    `json:"id"`
	Title     string  `json:"title"`
	EventType string  `json:"event_type"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// NewCalendarItemDTO falls back to the type name when the event has no title.
func NewCalendarItemDTO(e *models.Event) CalendarItemDTO {
	item := CalendarItemDTO{
		ID:        e.ID,
		Title:     e.Title,
		StartDate: FormatDate(e.StartDate),
		EndDate:   FormatDate(e.EndDate),
	}
	if e.EventType != nil {
		item.EventType = e.EventType.Key
		if item.Title == "" {
			item.Title = e.EventType.NameEn
		}
	}
	return item
}

type MediaDTO struct {
	ID         uint      `json:"id"`
	Couple     uint      `json:"couple"`
	StorageKey string    `json:"storage_key"`
	URL        string    `json:"url"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedBy *uint     `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewMediaDTO(m *models.MediaFile) MediaDTO {
	return MediaDTO{
		ID:         m.ID,
		Couple:     m.CoupleID,
		StorageKey: m.StorageKey,
		URL:        m.URL,
		MimeType:   m.MimeType,
		SizeBytes:  m.SizeBytes,
		UploadedBy: m.UploadedByID,
		CreatedAt:  m.CreatedAt,
	}
}

type MoodBoardItemDTO struct {
	ID        uint           `json:"id"`
	MoodBoard uint           `json:"mood_board"`
	Media     *MediaDTO      `json:"media"`
	Caption   string         `json:"caption"`
	Position  *int           `json:"position"`
	CreatedBy *uint          `json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	Reactions map[string]int `json:"reactions"`
}

func NewMoodBoardItemDTO(item *models.MoodBoardItem) MoodBoardItemDTO {
	out := MoodBoardItemDTO{
		ID:        item.ID,
		MoodBoard: item.MoodBoardID,
		Caption:   item.Caption,
		Position:  item.Position,
		CreatedBy: item.CreatedByID,
		CreatedAt: item.CreatedAt,
		Reactions: make(map[string]int),
	}
	if item.Media != nil {
		media := NewMediaDTO(item.Media)
		out.Media = &media
	}
	for _, r := range item.Reactions {
		out.Reactions[r.ReactionType]++
	}
	return out
}

type MoodBoardDTO struct {
	ID        uint               `json:"id"`
	Event     uint               `json:"event"`
	IsEnabled bool               `json:"is_enabled"`
	Items     []MoodBoardItemDTO `json:"items"`
}

func NewMoodBoardDTO(b *models.MoodBoard) MoodBoardDTO {
	out := MoodBoardDTO{
		ID:        b.ID,
		Event:     b.EventID,
		IsEnabled: b.IsEnabled,
		Items:     make([]MoodBoardItemDTO, 0, len(b.Items)),
	}
	for i := range b.Items {
		out.Items = append(out.Items, NewMoodBoardItemDTO(&b.Items[i]))
	}
	return out
}

type BudgetLineItemDTO struct {
	ID                  uint      `json:"id"`
	EventBudgetCategory uint      `json:"event_budget_category"`
	Label               string    `json:"label"`
	PlannedAmount       *string   `json:"planned_amount"`
	ActualAmount        *string   `json:"actual_amount"`
	Notes               string    `json:"notes"`
	PaidOn              *string   `json:"paid_on"`
	ReceiptMedia        *uint     `json:"receipt_media"`
	CreatedBy           *uint     `json:"created_by"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func NewBudgetLineItemDTO(li *models.BudgetLineItem) BudgetLineItemDTO {
	return BudgetLineItemDTO{
		ID:                  li.ID,
		EventBudgetCategory: li.EventBudgetCategoryID,
		Label:               li.Label,
		PlannedAmount:       NullMoney(li.PlannedAmount),
		ActualAmount:        NullMoney(li.ActualAmount),
		Notes:               li.Notes,
		PaidOn:              FormatDate(li.PaidOn),
		ReceiptMedia:        li.ReceiptMediaID,
		CreatedBy:           li.CreatedByID,
		CreatedAt:           li.CreatedAt,
		UpdatedAt:           li.UpdatedAt,
	}
}

type EventBudgetCategoryDTO struct {
	ID            uint                `json:"id"`
	EventBudget   uint                `json:"event_budget"`
	Category      *BudgetCategoryDTO  `json:"category"`
	PlannedAmount string              `json:"planned_amount"`
	SpentAmount   string              `json:"spent_amount"`
	LineItems     []BudgetLineItemDTO `json:"line_items"`
}

type EventBudgetDTO struct {
	ID           uint                     `json:"id"`
	Event        uint                     `json:"event"`
	CurrencyCode string                   `json:"currency_code"`
	TotalPlanned string                   `json:"total_planned"`
	TotalSpent   string                   `json:"total_spent"`
	Categories   []EventBudgetCategoryDTO `json:"categories"`
}

func NewEventBudgetDTO(b *models.EventBudget) EventBudgetDTO {
	out := EventBudgetDTO{
		ID:           b.ID,
		Event:        b.EventID,
		CurrencyCode: b.CurrencyCode,
		TotalPlanned: Money(b.TotalPlanned),
		TotalSpent:   Money(b.TotalSpent),
		Categories:   make([]EventBudgetCategoryDTO, 0, len(b.Categories)),
	}
	for _, c := range b.Categories {
		cat := EventBudgetCategoryDTO{
			ID:            c.ID,
			EventBudget:   c.EventBudgetID,
			PlannedAmount: Money(c.PlannedAmount),
			SpentAmount:   Money(c.SpentAmount),
			LineItems:     make([]BudgetLineItemDTO, 0, len(c.LineItems)),
		}
		if c.Category != nil {
			bc := NewBudgetCategoryDTO(c.Category)
			cat.Category = &bc
		}
		for i := range c.LineItems {
			cat.LineItems = append(cat.LineItems, NewBudgetLineItemDTO(&c.LineItems[i]))
		}
		out.Categories = append(out.Categories, cat)
	}
	return out
}

type HoneymoonItemDTO struct {
	ID            uint      `json:"id"`
	HoneymoonPlan uint      `json:"honeymoon_plan"`
	Type          string    `json:"type"`
	Label         string    `json:"label"`
	StartDate     *string   `json:"start_date"`
	EndDate       *string   `json:"end_date"`
	PlannedAmount *string   `json:"planned_amount"`
	ActualAmount  *string   `json:"actual_amount"`
	ProviderName  string    `json:"provider_name"`
	BookingRef    string    `json:"booking_ref"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewHoneymoonItemDTO(it *models.HoneymoonItem) HoneymoonItemDTO {
	return HoneymoonItemDTO{
		ID:            it.ID,
		HoneymoonPlan: it.HoneymoonPlanID,
		Type:          string(it.Type),
		Label:         it.Label,
		StartDate:     FormatDate(it.StartDate),
		EndDate:       FormatDate(it.EndDate),
		PlannedAmount: NullMoney(it.PlannedAmount),
		ActualAmount:  NullMoney(it.ActualAmount),
		ProviderName:  it.ProviderName,
		BookingRef:    it.BookingRef,
		Notes:         it.Notes,
		CreatedAt:     it.CreatedAt,
	}
}

type HoneymoonPlanDTO struct {
	ID                 uint               `json:"id"`
	Event              uint               `json:"event"`
	DestinationCountry string             `json:"destination_country"`
	DestinationCity    string             `json:"destination_city"`
	StartDate          *string            `json:"start_date"`
	EndDate            *string            `json:"end_date"`
	Notes              string             `json:"notes"`
	TotalPlanned       string             `json:"total_planned"`
	TotalSpent         string             `json:"total_spent"`
	Items              []HoneymoonItemDTO `json:"items"`
}

func NewHoneymoonPlanDTO(p *models.HoneymoonPlan) HoneymoonPlanDTO {
	out := HoneymoonPlanDTO{
		ID:                 p.ID,
		Event:              p.EventID,
		DestinationCountry: p.DestinationCountry,
		DestinationCity:    p.DestinationCity,
		StartDate:          FormatDate(p.StartDate),
		EndDate:            FormatDate(p.EndDate),
		Notes:              p.Notes,
		TotalPlanned:       Money(p.TotalPlanned),
		TotalSpent:         Money(p.TotalSpent),
		Items:              make([]HoneymoonItemDTO, 0, len(p.Items)),
	}
	for i := range p.Items {
		out.Items = append(out.Items, NewHoneymoonItemDTO(&p.Items[i]))
	}
	return out
}

type CommentDTO struct {
	ID         uint      `json:"id"`
	Couple     uint      `json:"couple"`
	TargetType string    `json:"target_type"`
	TargetID   uint      `json:"target_id"`
	Body       string    `json:"body"`
	CreatedBy  *uint     `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewCommentDTO(c *models.Comment) CommentDTO {
	return CommentDTO{
		ID:         c.ID,
		Couple:     c.CoupleID,
		TargetType: c.TargetType,
		TargetID:   c.TargetID,
		Body:       c.Body,
		CreatedBy:  c.CreatedByID,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

type ActivityDTO struct {
	ID         uint                   `json:"id"`
	Couple     uint                   `json:"couple"`
	Actor      *uint                  `json:"actor"`
	Verb       string                 `json:"verb"`
	Metadata   map[string]interface{} `json:"metadata"`
	TargetType *string                `json:"target_type"`
	TargetID   *uint                  `json:"target_id"`
	CreatedAt  time.Time              `json:"created_at"`
}

func NewActivityDTO(a *models.ActivityLog) ActivityDTO {
	out := ActivityDTO{
		ID:        a.ID,
		Couple:    a.CoupleID,
		Actor:     a.ActorID,
		Verb:      a.Verb,
		Metadata:  map[string]interface{}(a.Metadata),
		TargetID:  a.TargetID,
		CreatedAt: a.CreatedAt,
	}
	if out.Metadata == nil {
		out.Metadata = map[string]interface{}{}
	}
	if a.TargetType != "" {
		tt := a.TargetType
		out.TargetType = &tt
	}
	return out
}

type TaskDTO struct {
	ID          uint       `json:"id"`
	Couple      uint       `json:"couple"`
	Event       *uint      `json:"event"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueDate     *string    `json:"due_date"`
	AssignedTo  *uint      `json:"assigned_to"`
	CreatedBy   *uint      `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

func NewTaskDTO(t *models.Task) TaskDTO {
	return TaskDTO{
		ID:          t.ID,
		Couple:      t.CoupleID,
		Event:       t.EventID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		DueDate:     FormatDate(t.DueDate),
		AssignedTo:  t.AssignedToID,
		CreatedBy:   t.CreatedByID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		CompletedAt: t.CompletedAt,
	}
}

type NotificationDTO struct {
	ID         uint      `json:"id"`
	Couple     *uint     `json:"couple"`
	User       uint      `json:"user"`
	Message    string    `json:"message"`
	IsRead     bool      `json:"is_read"`
	TargetType *string   `json:"target_type"`
	TargetID   *uint     `json:"target_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewNotificationDTO(n *models.Notification) NotificationDTO {
	out := NotificationDTO{
		ID:        n.ID,
		Couple:    n.CoupleID,
		User:      n.UserID,
		Message:   n.Message,
		IsRead:    n.IsRead,
		TargetID:  n.TargetID,
		CreatedAt: n.CreatedAt,
	}
	if n.TargetType != "" {
		tt := n.TargetType
		out.TargetType = &tt
	}
	return out
}

type BudgetTotals struct {
	Planned string `json:"planned"`
	Spent   string `json:"spent"`
}

type HoneymoonSummary struct {
	ID                 uint    `json:"id"`
	EventID            uint    `json:"event_id"`
	DestinationCountry string  `json:"destination_country"`
	DestinationCity    string  `json:"destination_city"`
	StartDate          *string `json:"start_date"`
	EndDate            *string `json:"end_date"`
	TotalPlanned       string  `json:"total_planned"`
	TotalSpent         string  `json:"total_spent"`
}

type MoodHighlight struct {
	ID        uint      `json:"id"`
	EventID   uint      `json:"event_id"`
	Caption   string    `json:"caption"`
	MediaURL  string    `json:"media_url"`
	CreatedAt time.Time `json:"created_at"`
}

type DashboardSummary struct {
	UpcomingEvents      []CalendarItemDTO `json:"upcoming_events"`
	Budget              BudgetTotals      `json:"budget"`
	Honeymoon           *HoneymoonSummary `json:"honeymoon"`
	MoodboardHighlights []MoodHighlight   `json:"moodboard_highlights"`
	RecentActivity      []ActivityDTO     `json:"recent_activity"`
}

// Requests

// SelectionRequest keeps selections raw so a non-list value can be reported.
type SelectionRequest struct {
	Selections json.RawMessage `json:"selections"`
}

type EventSelection struct {
	EventTypeKey    string  `json:"eventTypeKey"`
	Title           string  `json:"title"`
	Description     *string `json:"description"`
	StartDate       *string `json:"start_date"`
	EndDate         *string `json:"end_date"`
	EnableMoodboard *bool   `json:"enableMoodboard"`
}

type EventPatchRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

func (r EventPatchRequest) Validate() map[string]string {
	errors := make(map[string]string)
	validateDate(errors, "start_date", r.StartDate)
	validateDate(errors, "end_date", r.EndDate)
	validateDateOrder(errors, r.StartDate, r.EndDate)
	return errors
}

type BudgetAttachRequest struct {
	CategoryID   *uint  `json:"category_id"`
	CurrencyCode string `json:"currency_code"`
}

func (r BudgetAttachRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.CurrencyCode != "" && !validation.IsValidCurrency(r.CurrencyCode) {
		errors["currency_code"] = "Must be a three letter currency code"
	}
	return errors
}

type LineItemRequest struct {
	Label          string           `json:"label"`
	PlannedAmount  *decimal.Decimal `json:"planned_amount"`
	ActualAmount   *decimal.Decimal `json:"actual_amount"`
	Notes          string           `json:"notes"`
	PaidOn         *string          `json:"paid_on"`
	ReceiptMediaID *uint            `json:"receipt_media"`
}

func (r LineItemRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if validation.SanitizeString(r.Label) == "" {
		errors["label"] = "This field is required"
	}
	validateAmount(errors, "planned_amount", r.PlannedAmount)
	validateAmount(errors, "actual_amount", r.ActualAmount)
	validateDate(errors, "paid_on", r.PaidOn)
	return errors
}

type HoneymoonPlanRequest struct {
	DestinationCountry *string          `json:"destination_country"`
	DestinationCity    *string          `json:"destination_city"`
	StartDate          *string          `json:"start_date"`
	EndDate            *string          `json:"end_date"`
	Notes              *string          `json:"notes"`
	TotalPlanned       *decimal.Decimal `json:"total_planned"`
	TotalSpent         *decimal.Decimal `json:"total_spent"`
}

func (r HoneymoonPlanRequest) Validate() map[string]string {
	errors := make(map[string]string)
	validateDate(errors, "start_date", r.StartDate)
	validateDate(errors, "end_date", r.EndDate)
	validateDateOrder(errors, r.StartDate, r.EndDate)
	validateAmount(errors, "total_planned", r.TotalPlanned)
	validateAmount(errors, "total_spent", r.TotalSpent)
	return errors
}

type HoneymoonItemRequest struct {
	Type          string           `json:"type"`
	Label         string           `json:"label"`
	StartDate     *string          `json:"start_date"`
	EndDate       *string          `json:"end_date"`
	PlannedAmount *decimal.Decimal `json:"planned_amount"`
	ActualAmount  *decimal.Decimal `json:"actual_amount"`
	ProviderName  string           `json:"provider_name"`
	BookingRef    string           `json:"booking_ref"`
	Notes         string           `json:"notes"`
}

func (r HoneymoonItemRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if validation.SanitizeString(r.Label) == "" {
		errors["label"] = "This field is required"
	}
	if r.Type != "" && !models.HoneymoonItemType(r.Type).Valid() {
		errors["type"] = "Must be one of flight, hotel, activity, other"
	}
	validateDate(errors, "start_date", r.StartDate)
	validateDate(errors, "end_date", r.EndDate)
	validateAmount(errors, "planned_amount", r.PlannedAmount)
	validateAmount(errors, "actual_amount", r.ActualAmount)
	return errors
}

type MoodItemRequest struct {
	MediaID  uint   `json:"media_id"`
	Caption  string `json:"caption"`
	Position *int   `json:"position"`
}

func (r MoodItemRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.MediaID == 0 {
		errors["media_id"] = "This field is required"
	}
	if len(r.Caption) > 255 {
		errors["caption"] = "Must be at most 255 characters"
	}
	return errors
}

type ReactionRequest struct {
	ReactionType string `json:"reaction_type"`
}

type CommentRequest struct {
	TargetType string `json:"target_type"`
	TargetID   uint   `json:"target_id"`
	Body       string `json:"body"`
}

type ActivityRequest struct {
	Verb       string                 `json:"verb"`
	Metadata   map[string]interface{} `json:"metadata"`
	TargetType string                 `json:"target_type"`
	TargetID   *uint                  `json:"target_id"`
}

func (r ActivityRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Verb == "" {
		errors["verb"] = "This field is required"
	} else if len(r.Verb) > 50 {
		errors["verb"] = "Must be at most 50 characters"
	}
	return errors
}

type TaskCreateRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	DueDate     *string `json:"due_date"`
	EventID     *uint   `json:"event_id"`
	AssignedTo  *uint   `json:"assigned_to"`
}

func (r TaskCreateRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if validation.SanitizeString(r.Title) == "" {
		errors["title"] = "This field is required"
	}
	if r.Status != "" && !models.TaskStatus(r.Status).Valid() {
		errors["status"] = "Must be one of todo, in_progress, done"
	}
	validateDate(errors, "due_date", r.DueDate)
	return errors
}

type TaskPatchRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	DueDate     *string `json:"due_date"`
	EventID     *uint   `json:"event_id"`
	AssignedTo  *uint   `json:"assigned_to"`
}

func (r TaskPatchRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Title != nil && validation.SanitizeString(*r.Title) == "" {
		errors["title"] = "This field may not be blank"
	}
	if r.Status != nil && !models.TaskStatus(*r.Status).Valid() {
		errors["status"] = "Must be one of todo, in_progress, done"
	}
	validateDate(errors, "due_date", r.DueDate)
	return errors
}

// MarkReadRequest keeps ids raw so a non-list value can be reported.
type MarkReadRequest struct {
	IDs json.RawMessage `json:"ids"`
}

type UpdatedResponse struct {
	Updated int `json:"updated"`
}

func validateDate(errors map[string]string, field string, value *string) {
	if _, err := ParseDate(value); err != nil {
		errors[field] = "Date has wrong format. Use YYYY-MM-DD"
	}
}

func validateDateOrder(errors map[string]string, start, end *string) {
	s, err1 := ParseDate(start)
	e, err2 := ParseDate(end)
	if err1 != nil || err2 != nil || s == nil || e == nil {
		return
	}
	if time.Time(*e).Before(time.Time(*s)) {
		errors["end_date"] = "End date must not be before start date"
	}
}

func validateAmount(errors map[string]string, field string, value *decimal.Decimal) {
	if value == nil {
		return
	}
	if value.IsNegative() {
		errors[field] = "Must not be negative"
	} else if value.GreaterThanOrEqual(decimal.New(1, 10)) {
		errors[field] = "Ensure that there are no more than 12 digits in total"
	} else if !value.Equal(value.Round(2)) {
		errors[field] = "Ensure that there are no more than 2 decimal places"
	}
}
