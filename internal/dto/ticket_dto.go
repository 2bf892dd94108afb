package dto

import (
	"karmahub/internal/domain"
	"karmahub/internal/notification"
)

type TicketResponse struct {
	Ticket *domain.JobTicket    `json:"ticket"`
	Notice *notification.Notice `json:"notice,omitempty"`
}

type ListTicketsResponse struct {
	Tickets    []*domain.JobTicket `json:"tickets"`
	Pagination PaginationResponse  `json:"pagination"`
}

// SettlementResponse reports a settlement flag; Changed is false when the
// flag had already been set
type SettlementResponse struct {
	Ticket  *domain.JobTicket    `json:"ticket"`
	Changed bool                 `json:"changed"`
	Notice  *notification.Notice `json:"notice,omitempty"`
}
