package service

import (
	"github.com/MKhiriev/go-notes-sync/internal/crypto"
	"github.com/MKhiriev/go-notes-sync/internal/profile"
	"github.com/MKhiriev/go-notes-sync/internal/store"
)

type ClientServices struct {
	KeyService   ClientKeyService
	QueueService ClientQueueService
}

func NewClientServices(storages *store.ClientStorages, p *profile.Profile, c crypto.Cipher) *ClientServices {
	return &ClientServices{
		KeyService:   NewClientKeyService(p, c),
		QueueService: NewClientQueueService(storages),
	}
}
