package presence

type UpsertDayRequest struct {
	UserID  string  `json:"userId" binding:"required"`
	Date    string  `json:"date" binding:"required,datetime=2006-01-02"`
	Type    string  `json:"type" binding:"required,oneof=FULL FIRST-HALF LAST-HALF EMPTY"`
	Comment *string `json:"comment"`
}

type DayAtWorkResponse struct {
	UserID  string  `json:"userId"`
	Date    string  `json:"date"`
	Type    string  `json:"type"`
	Comment *string `json:"comment,omitempty"`
}

type DayAttendee struct {
	UserID  string  `json:"userId"`
	Type    string  `json:"type"`
	Comment *string `json:"comment,omitempty"`
}

type DaySummaryResponse struct {
	Date      string        `json:"date"`
	Attendees []DayAttendee `json:"attendees"`
}
