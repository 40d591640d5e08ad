package mqtt

// Publisher sends payloads to an MQTT broker.
type Publisher interface {
	// Publish sends payload to topic using the publisher's QoS and retain
	// settings.
	Publish(topic string, payload []byte) error
	// Disconnect releases the broker connection.
	Disconnect()
}
