package goble

import (
	"encoding/binary"

	"github.com/go-ble/ble"
	"github.com/srg/blepad/internal/hid"
)

// GATT assigned numbers used by the HID-over-GATT profile.
var (
	HIDServiceUUID        = ble.UUID16(0x1812)
	BatteryServiceUUID    = ble.UUID16(0x180F)
	DeviceInfoServiceUUID = ble.UUID16(0x180A)

	reportMapUUID       = ble.UUID16(0x2A4B)
	hidInformationUUID  = ble.UUID16(0x2A4A)
	hidControlPointUUID = ble.UUID16(0x2A4C)
	protocolModeUUID    = ble.UUID16(0x2A4E)
	reportUUID          = ble.UUID16(0x2A4D)
	reportReferenceUUID = ble.UUID16(0x2908)
	batteryLevelUUID    = ble.UUID16(0x2A19)
	manufacturerUUID    = ble.UUID16(0x2A29)
	pnpIDUUID           = ble.UUID16(0x2A50)
)

const (
	hidVersion       = 0x0111 // bcdHID 1.11
	reportTypeInput  = 0x01
	protocolReport   = 0x01
	controlSuspend   = 0x00
	controlExitSleep = 0x01
)

// PnPID is the Device Information PnP ID characteristic.
type PnPID struct {
	VendorIDSource uint8
	VendorID       uint16
	ProductID      uint16
	ProductVersion uint16
}

// Bytes encodes the characteristic value, multi-byte fields little endian.
func (p PnPID) Bytes() []byte {
	b := make([]byte, 7)
	b[0] = p.VendorIDSource
	binary.LittleEndian.PutUint16(b[1:], p.VendorID)
	binary.LittleEndian.PutUint16(b[3:], p.ProductID)
	binary.LittleEndian.PutUint16(b[5:], p.ProductVersion)
	return b
}

// Profile is everything the host learns about the gamepad over GATT.
type Profile struct {
	Name         string
	Manufacturer string
	PnP          PnPID
	CountryCode  uint8
	HIDFlags     uint8
}

// hidInformation encodes bcdHID, country code and flags.
func (p Profile) hidInformation() []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint16(b, hidVersion)
	b[2] = p.CountryCode
	b[3] = p.HIDFlags
	return b
}

// services builds the HID, Battery and Device Information services. Dynamic values
// (input report, battery level, connection tracking) are served by t.
func (t *Transport) services() []*ble.Service {
	hidSvc := ble.NewService(HIDServiceUUID)

	hidSvc.NewCharacteristic(reportMapUUID).SetValue(hid.ReportDescriptor())
	hidSvc.NewCharacteristic(hidInformationUUID).SetValue(t.profile.hidInformation())

	hidSvc.NewCharacteristic(hidControlPointUUID).
		HandleWrite(ble.WriteHandlerFunc(t.handleControlPoint))

	protocolMode := hidSvc.NewCharacteristic(protocolModeUUID)
	protocolMode.HandleRead(ble.ReadHandlerFunc(func(_ ble.Request, rsp ble.ResponseWriter) {
		_, _ = rsp.Write([]byte{protocolReport})
	}))
	protocolMode.HandleWrite(ble.WriteHandlerFunc(func(req ble.Request, _ ble.ResponseWriter) {
		t.logger.WithField("mode", req.Data()).Debug("Host set protocol mode")
	}))

	input := hidSvc.NewCharacteristic(reportUUID)
	input.HandleRead(ble.ReadHandlerFunc(func(_ ble.Request, rsp ble.ResponseWriter) {
		report := t.LastReport()
		_, _ = rsp.Write(report.Bytes())
	}))
	input.HandleNotify(ble.NotifyHandlerFunc(func(_ ble.Request, n ble.Notifier) {
		t.serveInputReport(n.Context(), n)
	}))
	input.NewDescriptor(reportReferenceUUID).SetValue([]byte{hid.ReportID, reportTypeInput})

	batterySvc := ble.NewService(BatteryServiceUUID)
	level := batterySvc.NewCharacteristic(batteryLevelUUID)
	level.HandleRead(ble.ReadHandlerFunc(func(_ ble.Request, rsp ble.ResponseWriter) {
		_, _ = rsp.Write([]byte{t.BatteryLevel()})
	}))
	level.HandleNotify(ble.NotifyHandlerFunc(func(_ ble.Request, n ble.Notifier) {
		t.serveBattery(n.Context(), n)
	}))

	infoSvc := ble.NewService(DeviceInfoServiceUUID)
	infoSvc.NewCharacteristic(manufacturerUUID).SetValue([]byte(t.profile.Manufacturer))
	infoSvc.NewCharacteristic(pnpIDUUID).SetValue(t.profile.PnP.Bytes())

	return []*ble.Service{hidSvc, batterySvc, infoSvc}
}

func (t *Transport) handleControlPoint(req ble.Request, _ ble.ResponseWriter) {
	data := req.Data()
	if len(data) == 0 {
		return
	}
	switch data[0] {
	case controlSuspend:
		t.logger.Debug("Host suspended")
	case controlExitSleep:
		t.logger.Debug("Host exited suspend")
	}
}
