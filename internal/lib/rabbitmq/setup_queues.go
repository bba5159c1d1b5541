package rabbitmq

// QueueConfig описывает очередь и ключ маршрутизации, которыми она привязана к обменнику.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// RoutingKeyUserRegistered — ключ маршрутизации события регистрации пользователя.
const RoutingKeyUserRegistered = "user.registered"

// GetUserQueues возвращает очереди, которые слушают события пользователей.
func GetUserQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "users.welcome", RoutingKey: RoutingKeyUserRegistered},
	}
}
