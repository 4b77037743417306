package bot

import (
	"fmt"
	"strconv"

	"newton-gpt/internal/logbuf"
	"newton-gpt/internal/store"
)

const (
	respPong           = "Pong!"
	respCreated        = "Created!"
	respStorageError   = "Error in datastorage."
	respModelUpdated   = "The GPT model update for you has been successfully completed!"
	respModelMissing   = "Error fetch the model name."
	respSendFailed     = "There was a server-side error. Please try again later."
	respNotImplemented = "not implemented :("
)

// Dispatcher routes slash commands. Every invocation yields exactly one
// response string, which the gateway wraps as an ephemeral reply.
type Dispatcher struct {
	gw           Gateway
	store        *store.Store
	log          *logbuf.Buffer
	defaultModel string
}

func NewDispatcher(gw Gateway, st *store.Store, log *logbuf.Buffer, defaultModel string) *Dispatcher {
	return &Dispatcher{gw: gw, store: st, log: log, defaultModel: defaultModel}
}

func (d *Dispatcher) Dispatch(inter InteractionEvent) string {
	d.log.Infof("received command %q from %s", inter.Command, inter.UserID)

	switch inter.Command {
	case "ping":
		return respPong
	case "info":
		return d.info(inter)
	case "model":
		return d.model(inter)
	case "create_chat":
		return d.createChat(inter)
	default:
		return respNotImplemented
	}
}

// info reports the invoking user's active model, lazily creating a default
// record for first-time users.
func (d *Dispatcher) info(inter InteractionEvent) string {
	userID, err := strconv.ParseUint(inter.UserID, 10, 64)
	if err != nil {
		d.log.Errorf("unparseable user id %q: %v", inter.UserID, err)
		return respStorageError
	}

	d.store.LockUser(userID)
	defer d.store.UnlockUser(userID)

	users, err := d.store.Load()
	if err != nil {
		d.log.Errorf("can't load preferences: %v", err)
		return respStorageError
	}

	model := d.defaultModel
	if u := users.FindByUser(userID); u != nil {
		model = u.Model
	} else {
		users.Upsert(store.User{UserID: userID, Model: model})
		if err := d.store.Persist(users); err != nil {
			d.log.Errorf("can't persist default preference for %d: %v", userID, err)
			return respStorageError
		}
	}
	return fmt.Sprintf("The currently selected GPT model: %s", model)
}

// model stores the user's engine choice. The name argument is constrained
// to the registered choices by the platform, not re-validated here.
func (d *Dispatcher) model(inter InteractionEvent) string {
	name := inter.Options["name"]
	if name == "" {
		return respModelMissing
	}
	userID, err := strconv.ParseUint(inter.UserID, 10, 64)
	if err != nil {
		d.log.Errorf("unparseable user id %q: %v", inter.UserID, err)
		return respStorageError
	}

	d.store.LockUser(userID)
	defer d.store.UnlockUser(userID)

	users, err := d.store.Load()
	if err != nil {
		d.log.Errorf("can't load preferences: %v", err)
		return respStorageError
	}
	users.Upsert(store.User{UserID: userID, Model: name})
	if err := d.store.Persist(users); err != nil {
		d.log.Errorf("can't update model for user %d: %v", userID, err)
		return respStorageError
	}
	return respModelUpdated
}

// createChat announces a new conversation in the channel and opens a
// thread rooted at the announcement. Thread creation is best effort: its
// failure is logged, not surfaced to the invoker.
func (d *Dispatcher) createChat(inter InteractionEvent) string {
	title := inter.Options["title"]
	if title == "" {
		title = "Untitled"
	}
	d.log.Infof("creating new thread %q in %s", title, inter.ChannelID)

	msgID, err := d.gw.SendMessage(inter.ChannelID, fmt.Sprintf("Создаю новую беседу с названием: %s", title))
	if err != nil {
		d.log.Warnf("can't send thread announcement: %v", err)
		return respSendFailed
	}

	if err := d.gw.CreateThread(inter.ChannelID, msgID, title); err != nil {
		d.log.Warnf("can't create thread: %v", err)
	}
	return respCreated
}
