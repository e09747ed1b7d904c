package mqtt

import (
	"fmt"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/goccy/go-json"
)

// ReprimandEvent is the payload published on every reprimand change.
type ReprimandEvent struct {
	Reprimand *models.Reprimand `json:"reprimand"`
}

// ReprimandPublisher forwards reprimand lifecycle events to the MQTT
// broker so dashboards and sibling services can follow moderation
// activity. It implements the moderation service's Notifier.
type ReprimandPublisher struct {
	mc *MqttCommunicator
}

// NewReprimandPublisher creates a publisher on top of the communicator.
func NewReprimandPublisher(mc *MqttCommunicator) *ReprimandPublisher {
	return &ReprimandPublisher{mc: mc}
}

// ReprimandChanged publishes the reprimand on
// pancy/moderation/<guildId>/reprimands. Best effort: broker failures
// are logged and swallowed.
func (p *ReprimandPublisher) ReprimandChanged(r *models.Reprimand) {
	if p.mc == nil || !p.mc.IsConnected() {
		return
	}

	payload, err := json.Marshal(ReprimandEvent{Reprimand: r})
	if err != nil {
		logger.Error(fmt.Sprintf("Error serializando evento de reprimand %s: %v", r.ID, err), "MQTT")
		return
	}

	topic := fmt.Sprintf("pancy/moderation/%s/reprimands", r.GuildID)
	go func() {
		if err := p.mc.PublishBytes(topic, payload); err != nil {
			logger.Error(fmt.Sprintf("Error publicando evento de reprimand %s: %v", r.ID, err), "MQTT")
		}
	}()
}
