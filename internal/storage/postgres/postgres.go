package postgres

import (
	"context"
	"database/sql"
	serrors "errors"
	"fmt"

	"trip_broker/internal/conversion"
	liberrors "trip_broker/internal/lib/errors"
	"trip_broker/internal/models/request"
	"trip_broker/internal/models/user"

	"github.com/lib/pq"
)

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	schemas := []string{
		`
	CREATE TABLE IF NOT EXISTS request (
		id UUID PRIMARY KEY,
		travelerId UUID NOT NULL,
		destination VARCHAR(200) NOT NULL,
		startDate TIMESTAMP,
		endDate TIMESTAMP,
		flexibleDates BOOLEAN DEFAULT FALSE,
		budget NUMERIC,
		numberOfTravelers INT DEFAULT 1,
		tripType VARCHAR(50),
		experienceLevel VARCHAR(50),
		ageGroup VARCHAR(50),
		specialNeeds VARCHAR(500),
		privacyLevel VARCHAR(50),
		preferences VARCHAR(1000),
		status VARCHAR(50) NOT NULL,
		adminNotes VARCHAR(1000),
		convertedTripId UUID,
		createdAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updatedAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS requestOrganizer (
		requestId UUID REFERENCES request(id) ON DELETE CASCADE,
		organizerId UUID NOT NULL,
		position INT NOT NULL,
		PRIMARY KEY(requestId, organizerId)
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS proposal (
		id UUID PRIMARY KEY,
		requestId UUID REFERENCES request(id) ON DELETE CASCADE,
		organizerId UUID NOT NULL,
		price NUMERIC NOT NULL,
		currency VARCHAR(10),
		itinerarySummary VARCHAR(2000) NOT NULL,
		inclusions TEXT[],
		exclusions TEXT[],
		stayType VARCHAR(100),
		comfortLevel VARCHAR(100),
		transportType VARCHAR(100),
		maxGroupSize INT,
		safetyPlanPresent BOOLEAN,
		valueStatement VARCHAR(500),
		priceBreakdown VARCHAR(1000),
		cancellationPolicy VARCHAR(500),
		validUntil TIMESTAMP,
		status VARCHAR(20) NOT NULL,
		sealed BOOLEAN DEFAULT TRUE,
		createdAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS trip (
		id UUID PRIMARY KEY,
		organizerId UUID NOT NULL,
		title VARCHAR(200) NOT NULL,
		description VARCHAR(2000),
		destination VARCHAR(200),
		startDate TIMESTAMP,
		endDate TIMESTAMP,
		price NUMERIC,
		currency VARCHAR(10),
		capacity INT,
		status VARCHAR(20),
		isPrivate BOOLEAN DEFAULT TRUE,
		allowedUserIds UUID[],
		paymentType VARCHAR(20),
		paymentMethods TEXT[],
		sourceRequestId UUID REFERENCES request(id),
		createdAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS organizer (
		id UUID PRIMARY KEY,
		name VARCHAR(200),
		role VARCHAR(20),
		verificationStatus VARCHAR(20),
		trustScore INT,
		companyName VARCHAR(200),
		createdAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updatedAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`,
	}

	for _, schema := range schemas {
		stmt, err := db.Prepare(schema)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		_, err = stmt.Exec()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return &Storage{db: db}, nil
}

func (s *Storage) SaveRequest(req request.Request) error {
	const op = "storage.postgres.SaveRequest"

	stmt, err := s.db.Prepare(`
	INSERT INTO request(id, travelerId, destination, startDate, endDate, flexibleDates, budget,
		numberOfTravelers, tripType, experienceLevel, ageGroup, specialNeeds, privacyLevel,
		preferences, status, createdAt, updatedAt)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = stmt.Exec(
		req.Id,
		req.TravelerId,
		req.Destination,
		req.StartDate,
		req.EndDate,
		req.FlexibleDates,
		req.Budget,
		req.NumberOfTravelers,
		req.TripType,
		req.ExperienceLevel,
		req.AgeGroup,
		req.SpecialNeeds,
		req.PrivacyLevel,
		req.Preferences,
		req.Status,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// AssignOrganizers writes the one-time routing snapshot and advances the
// request to assigned_to_organizers. The status guard keeps the snapshot
// populated exactly once: a request that already left open is never
// re-assigned.
func (s *Storage) AssignOrganizers(requestId string, organizerIds []string) error {
	const op = "storage.postgres.AssignOrganizers"

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
	UPDATE request
	SET status = $1, updatedAt = CURRENT_TIMESTAMP
	WHERE id = $2 AND status = $3
	`, request.StatusAssignedToOrganizers, requestId, request.StatusOpen)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, liberrors.ErrInvalidState)
	}

	for i, organizerId := range organizerIds {
		_, err = tx.Exec(`
		INSERT INTO requestOrganizer(requestId, organizerId, position)
		VALUES ($1, $2, $3)
		`, requestId, organizerId, i)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) FetchRequest(requestId string) (request.Request, error) {
	const op = "storage.postgres.FetchRequest"

	stmt, err := s.db.Prepare(`
	SELECT id, travelerId, destination, startDate, endDate, flexibleDates, budget,
		numberOfTravelers, tripType, experienceLevel, ageGroup, specialNeeds, privacyLevel,
		preferences, status, adminNotes, convertedTripId, createdAt, updatedAt
	FROM request
	WHERE id = $1
	`)
	if err != nil {
		return request.Request{}, fmt.Errorf("%s: %w", op, err)
	}

	req, err := scanRequest(stmt.QueryRow(requestId))
	if err != nil {
		if serrors.Is(err, sql.ErrNoRows) {
			return request.Request{}, fmt.Errorf("%s: %w", op, liberrors.ErrNotFoundOrAccessDenied)
		}
		return request.Request{}, fmt.Errorf("%s: %w", op, err)
	}

	req.AssignedOrganizers, err = s.readAssignedOrganizers(requestId)
	if err != nil {
		return request.Request{}, fmt.Errorf("%s: %w", op, err)
	}

	req.Proposals, err = s.readProposals(requestId)
	if err != nil {
		return request.Request{}, fmt.Errorf("%s: %w", op, err)
	}

	return req, nil
}

// ReadRequests lists requests scoped by the viewer's role: travelers see
// their own, organizers see their assignments, admins and agents see
// everything.
func (s *Storage) ReadRequests(viewerId, role string, limit, offset int) ([]request.Request, error) {
	const op = "storage.postgres.ReadRequests"

	query := `
	SELECT id, travelerId, destination, startDate, endDate, flexibleDates, budget,
		numberOfTravelers, tripType, experienceLevel, ageGroup, specialNeeds, privacyLevel,
		preferences, status, adminNotes, convertedTripId, createdAt, updatedAt
	FROM request
	WHERE travelerId = $1
	ORDER BY createdAt DESC
	LIMIT $2 OFFSET $3
	`
	switch role {
	case user.RoleOrganizer:
		query = `
	SELECT r.id, travelerId, destination, startDate, endDate, flexibleDates, budget,
		numberOfTravelers, tripType, experienceLevel, ageGroup, specialNeeds, privacyLevel,
		preferences, status, adminNotes, convertedTripId, createdAt, updatedAt
	FROM request r
	INNER JOIN requestOrganizer ro
	ON ro.requestId = r.id
	WHERE ro.organizerId = $1
	ORDER BY createdAt DESC
	LIMIT $2 OFFSET $3
	`
	case user.RoleAdmin, user.RoleAgent:
		query = `
	SELECT id, travelerId, destination, startDate, endDate, flexibleDates, budget,
		numberOfTravelers, tripType, experienceLevel, ageGroup, specialNeeds, privacyLevel,
		preferences, status, adminNotes, convertedTripId, createdAt, updatedAt
	FROM request
	WHERE $1 <> ''
	ORDER BY createdAt DESC
	LIMIT $2 OFFSET $3
	`
	}

	stmt, err := s.db.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := stmt.Query(viewerId, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]request.Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i := range result {
		result[i].AssignedOrganizers, err = s.readAssignedOrganizers(result[i].Id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result[i].Proposals, err = s.readProposals(result[i].Id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return result, nil
}

// AppendProposal inserts one proposal while holding the request row lock, so
// two organizers submitting simultaneously both land and the status check
// cannot race the selection commit.
func (s *Storage) AppendProposal(requestId string, prop request.Proposal) error {
	const op = "storage.postgres.AppendProposal"

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	status, err := lockRequestStatus(tx, requestId)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !status.AcceptsProposals() {
		return fmt.Errorf("%s: %w: %s", op, liberrors.ErrInvalidState, status)
	}

	_, err = tx.Exec(`
	INSERT INTO proposal(id, requestId, organizerId, price, currency, itinerarySummary,
		inclusions, exclusions, stayType, comfortLevel, transportType, maxGroupSize,
		safetyPlanPresent, valueStatement, priceBreakdown, cancellationPolicy, validUntil,
		status, sealed, createdAt)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`,
		prop.Id,
		requestId,
		prop.OrganizerId,
		prop.Price,
		prop.Currency,
		prop.ItinerarySummary,
		pq.Array(prop.Inclusions),
		pq.Array(prop.Exclusions),
		prop.QualitySnapshot.StayType,
		prop.QualitySnapshot.ComfortLevel,
		prop.QualitySnapshot.TransportType,
		prop.QualitySnapshot.MaxGroupSize,
		prop.QualitySnapshot.SafetyPlanPresent,
		prop.ValueStatement,
		prop.PriceBreakdown,
		prop.CancellationPolicy,
		prop.ValidUntil,
		prop.Status,
		prop.Sealed,
		prop.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = tx.Exec(`UPDATE request SET updatedAt = CURRENT_TIMESTAMP WHERE id = $1`, requestId)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// FinalizeSelection commits the conversion outcome as one atomic unit: the
// accepted proposal is unsealed, every sibling is rejected, the request moves
// to its new status, and in the auto-convert branch the private trip is
// inserted in the same transaction. Any failure rolls the whole thing back.
func (s *Storage) FinalizeSelection(requestId, proposalId string, out conversion.Outcome) error {
	const op = "storage.postgres.FinalizeSelection"

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, liberrors.ErrTransactionAborted, err)
	}
	defer tx.Rollback()

	status, err := lockRequestStatus(tx, requestId)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !status.AcceptsProposals() {
		return fmt.Errorf("%s: %w: %s", op, liberrors.ErrInvalidState, status)
	}

	res, err := tx.Exec(`
	UPDATE proposal
	SET status = $1, sealed = FALSE
	WHERE id = $2 AND requestId = $3
	`, request.ProposalAccepted, proposalId, requestId)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, liberrors.ErrTransactionAborted, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, liberrors.ErrTransactionAborted, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, liberrors.ErrProposalNotFound)
	}

	_, err = tx.Exec(`
	UPDATE proposal
	SET status = $1
	WHERE requestId = $2 AND id <> $3
	`, request.ProposalRejected, requestId, proposalId)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, liberrors.ErrTransactionAborted, err)
	}

	if out.Trip != nil {
		_, err = tx.Exec(`
		INSERT INTO trip(id, organizerId, title, description, destination, startDate, endDate,
			price, currency, capacity, status, isPrivate, allowedUserIds, paymentType,
			paymentMethods, sourceRequestId, createdAt)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		`,
			out.Trip.Id,
			out.Trip.OrganizerId,
			out.Trip.Title,
			out.Trip.Description,
			out.Trip.Destination,
			out.Trip.StartDate,
			out.Trip.EndDate,
			out.Trip.Price,
			out.Trip.Currency,
			out.Trip.Capacity,
			out.Trip.Status,
			out.Trip.IsPrivate,
			pq.Array(out.Trip.AllowedUserIds),
			out.Trip.PaymentConfig.PaymentType,
			pq.Array(out.Trip.PaymentConfig.PaymentMethods),
			out.Trip.SourceRequestId,
			out.Trip.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("%s: %w: %v", op, liberrors.ErrTransactionAborted, err)
		}

		_, err = tx.Exec(`
		UPDATE request
		SET status = $1, convertedTripId = $2, adminNotes = $3, updatedAt = CURRENT_TIMESTAMP
		WHERE id = $4
		`, out.Status, out.Trip.Id, out.AdminNote, requestId)
	} else {
		_, err = tx.Exec(`
		UPDATE request
		SET status = $1, adminNotes = $2, updatedAt = CURRENT_TIMESTAMP
		WHERE id = $3
		`, out.Status, out.AdminNote, requestId)
	}
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, liberrors.ErrTransactionAborted, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w: %v", op, liberrors.ErrTransactionAborted, err)
	}

	return nil
}

func (s *Storage) UpdateRequestStatus(requestId string, status request.RequestStatus, adminNote string) error {
	const op = "storage.postgres.UpdateRequestStatus"

	stmt, err := s.db.Prepare(`
	UPDATE request
	SET status = $1, adminNotes = $2, updatedAt = CURRENT_TIMESTAMP
	WHERE id = $3
	`)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := stmt.Exec(status, adminNote, requestId)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, liberrors.ErrNotFoundOrAccessDenied)
	}

	return nil
}

// EligibleOrganizerIds is the routing predicate: approved organizers at or
// above the trust bar with a company name set (proxy for a complete profile).
func (s *Storage) EligibleOrganizerIds(ctx context.Context, minTrustScore int) ([]string, error) {
	const op = "storage.postgres.EligibleOrganizerIds"

	rows, err := s.db.QueryContext(ctx, `
	SELECT id
	FROM organizer
	WHERE role = $1 AND verificationStatus = 'approved' AND trustScore >= $2 AND companyName <> ''
	ORDER BY trustScore DESC
	`, user.RoleOrganizer, minTrustScore)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ids, nil
}

func (s *Storage) OrganizerTrustScore(organizerId string) (int, error) {
	const op = "storage.postgres.OrganizerTrustScore"

	stmt, err := s.db.Prepare(`
	SELECT trustScore
	FROM organizer
	WHERE id = $1
	`)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var score int
	err = stmt.QueryRow(organizerId).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return score, nil
}

func (s *Storage) FetchOrganizer(organizerId string) (user.Organizer, error) {
	const op = "storage.postgres.FetchOrganizer"

	stmt, err := s.db.Prepare(`
	SELECT id, name, role, verificationStatus, trustScore, companyName, createdAt, updatedAt
	FROM organizer
	WHERE id = $1
	`)
	if err != nil {
		return user.Organizer{}, fmt.Errorf("%s: %w", op, err)
	}

	var org user.Organizer
	err = stmt.QueryRow(organizerId).Scan(&org.Id, &org.Name, &org.Role, &org.VerificationStatus,
		&org.TrustScore, &org.CompanyName, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if serrors.Is(err, sql.ErrNoRows) {
			return user.Organizer{}, fmt.Errorf("%s: %w", op, liberrors.ErrNotFoundOrAccessDenied)
		}
		return user.Organizer{}, fmt.Errorf("%s: %w", op, err)
	}

	return org, nil
}

func lockRequestStatus(tx *sql.Tx, requestId string) (request.RequestStatus, error) {
	var status request.RequestStatus
	err := tx.QueryRow(`
	SELECT status
	FROM request
	WHERE id = $1
	FOR UPDATE
	`, requestId).Scan(&status)
	if err != nil {
		if serrors.Is(err, sql.ErrNoRows) {
			return "", liberrors.ErrNotFoundOrAccessDenied
		}
		return "", err
	}
	return status, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (request.Request, error) {
	var req request.Request
	var startDate, endDate sql.NullTime
	var budget sql.NullFloat64
	var adminNotes, convertedTripId sql.NullString

	err := row.Scan(&req.Id, &req.TravelerId, &req.Destination, &startDate, &endDate,
		&req.FlexibleDates, &budget, &req.NumberOfTravelers, &req.TripType, &req.ExperienceLevel,
		&req.AgeGroup, &req.SpecialNeeds, &req.PrivacyLevel, &req.Preferences, &req.Status,
		&adminNotes, &convertedTripId, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return request.Request{}, err
	}

	if startDate.Valid {
		req.StartDate = &startDate.Time
	}
	if endDate.Valid {
		req.EndDate = &endDate.Time
	}
	if budget.Valid {
		req.Budget = &budget.Float64
	}
	req.AdminNotes = adminNotes.String
	req.ConvertedTripId = convertedTripId.String

	return req, nil
}

func (s *Storage) readAssignedOrganizers(requestId string) ([]string, error) {
	rows, err := s.db.Query(`
	SELECT organizerId
	FROM requestOrganizer
	WHERE requestId = $1
	ORDER BY position
	`, requestId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (s *Storage) readProposals(requestId string) ([]request.Proposal, error) {
	rows, err := s.db.Query(`
	SELECT id, organizerId, price, currency, itinerarySummary, inclusions, exclusions,
		stayType, comfortLevel, transportType, maxGroupSize, safetyPlanPresent, valueStatement,
		priceBreakdown, cancellationPolicy, validUntil, status, sealed, createdAt
	FROM proposal
	WHERE requestId = $1
	ORDER BY createdAt
	`, requestId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	props := make([]request.Proposal, 0)
	for rows.Next() {
		var prop request.Proposal
		err := rows.Scan(&prop.Id, &prop.OrganizerId, &prop.Price, &prop.Currency,
			&prop.ItinerarySummary, pq.Array(&prop.Inclusions), pq.Array(&prop.Exclusions),
			&prop.QualitySnapshot.StayType, &prop.QualitySnapshot.ComfortLevel,
			&prop.QualitySnapshot.TransportType, &prop.QualitySnapshot.MaxGroupSize,
			&prop.QualitySnapshot.SafetyPlanPresent, &prop.ValueStatement, &prop.PriceBreakdown,
			&prop.CancellationPolicy, &prop.ValidUntil, &prop.Status, &prop.Sealed, &prop.CreatedAt)
		if err != nil {
			return nil, err
		}
		props = append(props, prop)
	}

	return props, rows.Err()
}
