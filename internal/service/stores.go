package service

import (
	repositoryIface "karmahub/internal/repository/iface"
)

// Stores bundles the repositories of one record store driver
type Stores struct {
	Jobs         repositoryIface.JobRepository
	Applications repositoryIface.ApplicationRepository
	Tickets      repositoryIface.TicketRepository
	Settlement   repositoryIface.SettlementRepository
	Ratings      repositoryIface.RatingRepository
	Profiles     repositoryIface.ProfileRepository
	ActivityLog  repositoryIface.ActivityLogRepository
}
