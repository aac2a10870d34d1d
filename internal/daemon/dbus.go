package daemon

import (
	"codeberg.org/mutker/rogctl/internal/errors"
	"codeberg.org/mutker/rogctl/internal/logger"
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

const (
	BusName   = "org.rogctl.Daemon"
	Interface = "org.rogctl.Daemon"
	ErrorName = "org.rogctl.Daemon.Error"

	ObjectPath dbus.ObjectPath = "/org/rogctl/Daemon"
)

// Service is the object exported on the system bus. Every exported method
// becomes a D-Bus method of Interface.
type Service struct {
	ctl *Controller
}

func NewService(ctl *Controller) *Service {
	return &Service{ctl: ctl}
}

func (s *Service) SetProfile(n byte) *dbus.Error {
	return dbusError(s.ctl.SetProfile(n))
}

func (s *Service) NextProfile() *dbus.Error {
	return dbusError(s.ctl.NextProfile())
}

func (s *Service) ApplyProfile() *dbus.Error {
	return dbusError(s.ctl.ApplyProfile())
}

func (s *Service) GetProfile() (string, *dbus.Error) {
	return s.ctl.Profile().String(), nil
}

func (s *Service) SetChargeLimit(limit byte) *dbus.Error {
	return dbusError(s.ctl.SetChargeLimit(limit))
}

func (s *Service) GetChargeLimit() (byte, *dbus.Error) {
	return s.ctl.ChargeLimit(), nil
}

func (s *Service) Suspend() *dbus.Error {
	s.ctl.Suspend()
	return nil
}

func (s *Service) ToggleAirplaneMode() *dbus.Error {
	s.ctl.ToggleAirplaneMode()
	return nil
}

// dbusError carries the message and error code of err.
func dbusError(err error) *dbus.Error {
	if err == nil {
		return nil
	}

	logFailure(err, "D-Bus call failed")

	return dbus.NewError(ErrorName, []interface{}{err.Error(), string(errors.CodeOf(err))})
}

// conn is the subset of *dbus.Conn used to publish a Service.
type conn interface {
	Export(v interface{}, path dbus.ObjectPath, iface string) error
	RequestName(name string, flags dbus.RequestNameFlags) (dbus.RequestNameReply, error)
}

// Publish exports svc with introspection data and claims BusName.
func Publish(c conn, svc *Service) error {
	errFactory := errors.New()

	if err := c.Export(svc, ObjectPath, Interface); err != nil {
		return errFactory.Wrap(ErrDBusExport, err)
	}

	node := &introspect.Node{
		Name: string(ObjectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    Interface,
				Methods: introspect.Methods(svc),
			},
		},
	}
	err := c.Export(introspect.NewIntrospectable(node), ObjectPath, "org.freedesktop.DBus.Introspectable")
	if err != nil {
		return errFactory.Wrap(ErrDBusExport, err)
	}

	reply, err := c.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return errFactory.Wrap(ErrDBusExport, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return errFactory.WithData(ErrDBusNameTaken, BusName)
	}

	logger.Info().Str("name", BusName).Str("path", string(ObjectPath)).Msg("D-Bus service published")

	return nil
}
