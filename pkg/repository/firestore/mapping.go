package firestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/teamsense-lab/argus/pkg/domain/interfaces"
	"github.com/teamsense-lab/argus/pkg/domain/model"
	"github.com/teamsense-lab/argus/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	mappingsCollection     = "identity_mappings"
	correlationsCollection = "correlations"
)

type mappingRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.MappingRepository = &mappingRepository{}

func newMappingRepository(client *firestore.Client) *mappingRepository {
	return &mappingRepository{
		client: client,
	}
}

// mappingDoc is the Firestore persistence model
type mappingDoc struct {
	Owner            string    `firestore:"owner"`
	OrgID            string    `firestore:"org_id"`
	SourceIdentifier string    `firestore:"source_identifier"`
	TargetPlatform   string    `firestore:"target_platform"`
	TargetIdentifier string    `firestore:"target_identifier"`
	TargetName       string    `firestore:"target_name"`
	Type             string    `firestore:"type"`
	Confidence       float64   `firestore:"confidence"`
	Success          bool      `firestore:"success"`
	CreatedAt        time.Time `firestore:"created_at"`
	LastVerifiedAt   time.Time `firestore:"last_verified_at"`
}

// correlationDoc is the Firestore persistence model
type correlationDoc struct {
	OrgID     string    `firestore:"org_id"`
	Email     string    `firestore:"email"`
	Owner     string    `firestore:"owner"`
	ChatID    string    `firestore:"chat_id"`
	TrackerID string    `firestore:"tracker_id"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func (r *mappingRepository) mappings() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + mappingsCollection)
	}
	return r.client.Collection(mappingsCollection)
}

func (r *mappingRepository) correlations() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + correlationsCollection)
	}
	return r.client.Collection(correlationsCollection)
}

func mappingDocID(owner types.UserID, sourceID string, platform types.Platform) string {
	return fmt.Sprintf("%s|%s|%s", owner, platform, strings.ToLower(sourceID))
}

func correlationDocID(orgID types.OrgID, email string) string {
	return fmt.Sprintf("%s|%s", orgID, strings.ToLower(email))
}

func (r *mappingRepository) toDoc(m *model.IdentityMapping) *mappingDoc {
	return &mappingDoc{
		Owner:            string(m.Owner),
		OrgID:            string(m.OrgID),
		SourceIdentifier: strings.ToLower(m.SourceIdentifier),
		TargetPlatform:   string(m.TargetPlatform),
		TargetIdentifier: string(m.TargetIdentifier),
		TargetName:       m.TargetName,
		Type:             string(m.Type),
		Confidence:       m.Confidence,
		Success:          m.Success,
		CreatedAt:        m.CreatedAt,
		LastVerifiedAt:   m.LastVerifiedAt,
	}
}

func (r *mappingRepository) fromDoc(doc *mappingDoc) *model.IdentityMapping {
	return &model.IdentityMapping{
		Owner:            types.UserID(doc.Owner),
		OrgID:            types.OrgID(doc.OrgID),
		SourceIdentifier: doc.SourceIdentifier,
		TargetPlatform:   types.Platform(doc.TargetPlatform),
		TargetIdentifier: types.AccountID(doc.TargetIdentifier),
		TargetName:       doc.TargetName,
		Type:             types.MappingType(doc.Type),
		Confidence:       doc.Confidence,
		Success:          doc.Success,
		CreatedAt:        doc.CreatedAt,
		LastVerifiedAt:   doc.LastVerifiedAt,
	}
}

func (r *mappingRepository) fromCorrelationDoc(doc *correlationDoc) *model.CorrelationRecord {
	return &model.CorrelationRecord{
		OrgID:     types.OrgID(doc.OrgID),
		Email:     doc.Email,
		Owner:     types.UserID(doc.Owner),
		ChatID:    types.AccountID(doc.ChatID),
		TrackerID: types.AccountID(doc.TrackerID),
		UpdatedAt: doc.UpdatedAt,
	}
}

func (r *mappingRepository) Get(ctx context.Context, owner types.UserID, sourceID string, platform types.Platform) (*model.IdentityMapping, error) {
	doc, err := r.mappings().Doc(mappingDocID(owner, sourceID, platform)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get mapping",
			goerr.V("owner", owner), goerr.V("source", sourceID), goerr.V("platform", platform))
	}

	var md mappingDoc
	if err := doc.DataTo(&md); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal mapping", goerr.V("docID", doc.Ref.ID))
	}

	return r.fromDoc(&md), nil
}

func (r *mappingRepository) ListByOwner(ctx context.Context, owner types.UserID) ([]*model.IdentityMapping, error) {
	iter := r.mappings().Where("owner", "==", string(owner)).Documents(ctx)
	defer iter.Stop()

	var result []*model.IdentityMapping
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate mappings", goerr.V("owner", owner))
		}

		var md mappingDoc
		if err := doc.DataTo(&md); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal mapping", goerr.V("docID", doc.Ref.ID))
		}
		result = append(result, r.fromDoc(&md))
	}

	return result, nil
}

// Assign runs the evict-then-insert protocol in a single transaction:
// every other owner's mapping to the target identifier is deleted and
// their correlation field cleared, then the new owner's mapping and
// correlation entry are upserted. Firestore requires all reads before
// writes, so the transaction gathers state first.
func (r *mappingRepository) Assign(ctx context.Context, mapping *model.IdentityMapping) error {
	if !mapping.TargetIdentifier.IsValid() {
		return goerr.New("assign requires a target identifier", goerr.V("owner", mapping.Owner))
	}

	ownDocRef := r.mappings().Doc(mappingDocID(mapping.Owner, mapping.SourceIdentifier, mapping.TargetPlatform))
	ownCorrRef := r.correlations().Doc(correlationDocID(mapping.OrgID, mapping.SourceIdentifier))

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		// Reads first: conflicting mappings, their correlation docs,
		// and the new owner's own docs.
		conflictQuery := r.mappings().
			Where("target_platform", "==", string(mapping.TargetPlatform)).
			Where("target_identifier", "==", string(mapping.TargetIdentifier))

		iter := tx.Documents(conflictQuery)
		defer iter.Stop()

		type eviction struct {
			ref *firestore.DocumentRef
			doc mappingDoc
		}
		var evictions []eviction
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return goerr.Wrap(err, "failed to query conflicting mappings")
			}

			var md mappingDoc
			if err := doc.DataTo(&md); err != nil {
				return goerr.Wrap(err, "failed to unmarshal conflicting mapping", goerr.V("docID", doc.Ref.ID))
			}
			if md.Owner == string(mapping.Owner) {
				continue
			}
			evictions = append(evictions, eviction{ref: doc.Ref, doc: md})
		}

		var prevCreatedAt time.Time
		if ownDoc, err := tx.Get(ownDocRef); err == nil {
			var md mappingDoc
			if err := ownDoc.DataTo(&md); err == nil {
				prevCreatedAt = md.CreatedAt
			}
		} else if status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to get existing mapping")
		}

		var ownCorr correlationDoc
		ownCorrExists := false
		if corrDoc, err := tx.Get(ownCorrRef); err == nil {
			if err := corrDoc.DataTo(&ownCorr); err != nil {
				return goerr.Wrap(err, "failed to unmarshal correlation", goerr.V("docID", corrDoc.Ref.ID))
			}
			ownCorrExists = true
		} else if status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to get correlation")
		}

		type corrClear struct {
			ref *firestore.DocumentRef
			doc correlationDoc
		}
		var corrClears []corrClear
		for _, ev := range evictions {
			ref := r.correlations().Doc(correlationDocID(types.OrgID(ev.doc.OrgID), ev.doc.SourceIdentifier))
			corrDoc, err := tx.Get(ref)
			if err != nil {
				if status.Code(err) == codes.NotFound {
					continue
				}
				return goerr.Wrap(err, "failed to get evicted correlation", goerr.V("docID", ref.ID))
			}
			var cd correlationDoc
			if err := corrDoc.DataTo(&cd); err != nil {
				return goerr.Wrap(err, "failed to unmarshal evicted correlation", goerr.V("docID", ref.ID))
			}
			if cd.Owner != ev.doc.Owner {
				continue
			}
			corrClears = append(corrClears, corrClear{ref: ref, doc: cd})
		}

		// Writes: evict before insert
		for _, ev := range evictions {
			if err := tx.Delete(ev.ref); err != nil {
				return goerr.Wrap(err, "failed to delete conflicting mapping")
			}
		}
		for _, cc := range corrClears {
			cd := cc.doc
			switch mapping.TargetPlatform {
			case types.PlatformChat:
				cd.ChatID = ""
			case types.PlatformTracker:
				cd.TrackerID = ""
			}
			cd.UpdatedAt = mapping.LastVerifiedAt
			if err := tx.Set(cc.ref, &cd); err != nil {
				return goerr.Wrap(err, "failed to clear evicted correlation")
			}
		}

		stored := r.toDoc(mapping)
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = prevCreatedAt
		}
		if err := tx.Set(ownDocRef, stored); err != nil {
			return goerr.Wrap(err, "failed to save mapping")
		}

		if !ownCorrExists {
			ownCorr = correlationDoc{
				OrgID: string(mapping.OrgID),
				Email: strings.ToLower(mapping.SourceIdentifier),
			}
		}
		ownCorr.Owner = string(mapping.Owner)
		switch mapping.TargetPlatform {
		case types.PlatformChat:
			ownCorr.ChatID = string(mapping.TargetIdentifier)
		case types.PlatformTracker:
			ownCorr.TrackerID = string(mapping.TargetIdentifier)
		}
		ownCorr.UpdatedAt = mapping.LastVerifiedAt
		if err := tx.Set(ownCorrRef, &ownCorr); err != nil {
			return goerr.Wrap(err, "failed to save correlation")
		}

		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "assign transaction failed",
			goerr.V("owner", mapping.Owner), goerr.V("target", mapping.TargetIdentifier))
	}

	return nil
}

func (r *mappingRepository) RecordFailure(ctx context.Context, mapping *model.IdentityMapping) error {
	docRef := r.mappings().Doc(mappingDocID(mapping.Owner, mapping.SourceIdentifier, mapping.TargetPlatform))

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var prevCreatedAt time.Time
		if doc, err := tx.Get(docRef); err == nil {
			var md mappingDoc
			if err := doc.DataTo(&md); err == nil {
				prevCreatedAt = md.CreatedAt
			}
		} else if status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to get existing mapping")
		}

		stored := r.toDoc(mapping)
		stored.Success = false
		stored.TargetIdentifier = ""
		stored.TargetName = ""
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = prevCreatedAt
		}

		return tx.Set(docRef, stored)
	})
	if err != nil {
		return goerr.Wrap(err, "failed to record match failure",
			goerr.V("owner", mapping.Owner), goerr.V("source", mapping.SourceIdentifier))
	}

	return nil
}

func (r *mappingRepository) Unmap(ctx context.Context, owner types.UserID, sourceID string, platform types.Platform) error {
	docRef := r.mappings().Doc(mappingDocID(owner, sourceID, platform))

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return nil
			}
			return goerr.Wrap(err, "failed to get mapping")
		}

		var md mappingDoc
		if err := doc.DataTo(&md); err != nil {
			return goerr.Wrap(err, "failed to unmarshal mapping", goerr.V("docID", doc.Ref.ID))
		}

		corrRef := r.correlations().Doc(correlationDocID(types.OrgID(md.OrgID), md.SourceIdentifier))
		var cd correlationDoc
		corrExists := false
		if corrDoc, err := tx.Get(corrRef); err == nil {
			if err := corrDoc.DataTo(&cd); err != nil {
				return goerr.Wrap(err, "failed to unmarshal correlation", goerr.V("docID", corrRef.ID))
			}
			corrExists = cd.Owner == md.Owner
		} else if status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to get correlation")
		}

		if err := tx.Delete(docRef); err != nil {
			return goerr.Wrap(err, "failed to delete mapping")
		}
		if corrExists {
			switch types.Platform(md.TargetPlatform) {
			case types.PlatformChat:
				cd.ChatID = ""
			case types.PlatformTracker:
				cd.TrackerID = ""
			}
			cd.UpdatedAt = time.Now().UTC()
			if err := tx.Set(corrRef, &cd); err != nil {
				return goerr.Wrap(err, "failed to clear correlation")
			}
		}

		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "unmap transaction failed",
			goerr.V("owner", owner), goerr.V("source", sourceID))
	}

	return nil
}

func (r *mappingRepository) DeleteByOwner(ctx context.Context, owner types.UserID) error {
	// Collect doc IDs outside the transaction, then remove each
	// mapping with its paired correlation write.
	mappings, err := r.ListByOwner(ctx, owner)
	if err != nil {
		return err
	}

	for _, m := range mappings {
		if err := r.Unmap(ctx, m.Owner, m.SourceIdentifier, m.TargetPlatform); err != nil {
			return err
		}
	}

	return nil
}

func (r *mappingRepository) GetCorrelation(ctx context.Context, orgID types.OrgID, email string) (*model.CorrelationRecord, error) {
	doc, err := r.correlations().Doc(correlationDocID(orgID, email)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get correlation",
			goerr.V("org_id", orgID), goerr.V("email", email))
	}

	var cd correlationDoc
	if err := doc.DataTo(&cd); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal correlation", goerr.V("docID", doc.Ref.ID))
	}

	return r.fromCorrelationDoc(&cd), nil
}
