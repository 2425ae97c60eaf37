package sink

import (
	"context"
	"log/slog"

	"chat-relay/domain"
	"chat-relay/repositories"
)

// Archive stores one structured record per transcript event in the message
// repository. It is optional; the relay runs without it when no archive
// path is configured.
type Archive struct {
	repository repositories.IMessageRepository
	log        *slog.Logger
}

func NewArchive(repository repositories.IMessageRepository, log *slog.Logger) Archive {
	return Archive{repository: repository, log: log}
}

func (a Archive) Consume(_ context.Context, e domain.TranscriptEvent) error {
	return a.repository.StoreMessage(toArchivedMessage(e))
}

func toArchivedMessage(e domain.TranscriptEvent) repositories.ArchivedMessage {
	return repositories.ArchivedMessage{
		ID:     e.ID,
		Kind:   e.Kind.String(),
		Sender: e.Sender,
		Target: e.Target,
		Line:   e.Line,
		At:     e.At,
	}
}
