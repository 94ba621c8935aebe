// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

package ui

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/toeirei/activation-console/internal/core"
	"github.com/toeirei/activation-console/internal/i18n"
	"github.com/toeirei/activation-console/internal/model"
)

const panelRule = "===================="

func (c *Console) panelHeader(title string) {
	c.println()
	c.println(c.st.title.Render(panelRule + " " + title + " " + panelRule))
}

func (c *Console) panelFooter(title string) {
	c.println(c.st.title.Render(strings.Repeat("=", 2*len(panelRule)+len(title)+2)))
}

// Features prints a feature table. The row with key highlight is emphasized.
func (c *Console) Features(features []model.ActivationFeature, highlight string) {
	if len(features) == 0 {
		c.println(i18n.T("console.no_features"))
		return
	}
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		i18n.T("console.col_feature_key"), i18n.T("console.col_type"),
		i18n.T("console.col_active"), i18n.T("console.col_available"), i18n.T("console.col_total"))
	for _, f := range features {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.Key, f.Type, countCell(f, f.Active, ""),
			countCell(f, f.Available, i18n.T("console.unlimited")),
			countCell(f, f.Total, i18n.T("console.unlimited")))
	}
	tw.Flush()
	c.writeTable(b.String(), func(line string) bool {
		return highlight != "" && strings.HasPrefix(line, highlight+" ")
	})
}

// countCell renders one bound. Bool features have no counters.
func countCell(f model.ActivationFeature, v *int64, missing string) string {
	if f.IsBool() {
		return "-"
	}
	if v == nil {
		return missing
	}
	return strconv.FormatInt(*v, 10)
}

func (c *Console) writeTable(table string, emphasize func(string) bool) {
	for _, line := range strings.Split(strings.TrimRight(table, "\n"), "\n") {
		if emphasize != nil && emphasize(line) {
			line = c.st.highlight.Render(line)
		}
		c.println(line)
	}
}

func (c *Console) attributes(attrs []model.ActivationAttribute) {
	if len(attrs) == 0 {
		c.println(i18n.T("console.no_attributes"))
		return
	}
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n", i18n.T("console.col_key"), i18n.T("console.col_type"), i18n.T("console.col_value"))
	for _, a := range attrs {
		value := "null"
		if a.Value != nil {
			value = *a.Value
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", a.Key, a.Type, value)
	}
	tw.Flush()
	c.writeTable(b.String(), nil)
}

// Activation prints the activation panel for the live engine state.
func (c *Console) Activation(state model.ActivationState, info model.ActivationInfo) {
	title := i18n.T("console.activation_title")
	c.panelHeader(title)
	c.field("console.activation_id", orNA(strPtr(info.ActivationID)))
	c.printf("%s %s\n", i18n.T("console.state"), c.stateText(state))
	c.field("console.mode", info.Mode.String())
	c.field("console.product_id", orNA(info.ProductID))
	c.field("console.seat_id", orNA(info.SeatID))
	c.field("console.seat_name", orNA(info.SeatName))
	c.field("console.lease_expiry", c.expiry(info.LeaseExpiry))
	c.println(i18n.T("console.features_label"))
	c.Features(info.Features, "")
	c.println(i18n.T("console.attributes_label"))
	c.attributes(info.Attributes)
	c.panelFooter(title)
}

// Persisted prints what the engine holds in local storage.
func (c *Console) Persisted(data model.PersistentData) {
	title := i18n.T("console.persisted_title")
	c.panelHeader(title)
	if data.Entitlement != nil {
		c.entitlementLines(*data.Entitlement)
	} else {
		c.println(i18n.T("console.no_entitlement"))
	}
	if a := data.Activation; a != nil {
		c.field("console.activation_id", orNA(strPtr(a.ActivationID)))
		c.printf("%s %s\n", i18n.T("console.state"), c.stateText(a.State))
		c.field("console.mode", a.Mode.String())
		c.field("console.seat_id", orNA(a.SeatID))
		c.field("console.seat_name", orNA(a.SeatName))
		c.field("console.lease_expiry", c.expiry(a.LeaseExpiry))
		c.println(i18n.T("console.features_label"))
		c.Features(a.Features, "")
		c.println(i18n.T("console.attributes_label"))
		c.attributes(a.Attributes)
	} else {
		c.field("console.lease_expiry", "N/A")
		c.println(i18n.T("console.no_features"))
		c.println(i18n.T("console.no_attributes"))
	}
	c.panelFooter(title)
}

// Entitlement prints an entitlement panel.
func (c *Console) Entitlement(e model.Entitlement) {
	title := i18n.T("console.entitlement_title")
	c.panelHeader(title)
	c.entitlementLines(e)
	c.panelFooter(title)
}

func (c *Console) entitlementLines(e model.Entitlement) {
	c.println(i18n.T("console.entitlement_label"))
	c.field("console.customer_name", orNA(e.CustomerName))
	c.field("console.customer_account_ref", orNA(e.CustomerAccountRefID))
	c.field("console.order_ref", orNA(e.OrderRefID))
	c.field("console.offering_name", e.OfferingName)
	c.field("console.sku", e.SKU)
	c.field("console.product_name", e.ProductName)
	c.printf("%s name: %s, license type: %s, start type: %s, duration: {%s}\n",
		i18n.T("console.plan"), e.Plan.Name, e.Plan.LicenseType, e.Plan.LicenseStartType, e.Plan.LicenseDuration)
	c.field("console.grace_period", e.GracePeriod.String())
	c.field("console.linger_period", e.LingerPeriod.String())
	c.field("console.lease_period", e.LeasePeriod.String())
	c.field("console.offline_lease_period", e.OfflineLeasePeriod.String())
	c.field("console.has_maintenance", strconv.FormatBool(e.HasMaintenance))
	c.field("console.maintenance_expiry", orNA(e.MaintenanceExpiryDate))
	snapshot := "N/A"
	if !e.SnapshotDate.IsZero() {
		snapshot = core.FormatTime(e.SnapshotDate)
	}
	c.field("console.snapshot_date", snapshot)
}

func (c *Console) field(labelID, value string) {
	c.printf("%s %s\n", i18n.T(labelID), value)
}

// expiry renders an absolute time followed by a relative hint.
func (c *Console) expiry(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return fmt.Sprintf("%s (%s)", core.FormatTime(*t), humanize.RelTime(*t, c.now(), "ago", "from now"))
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orNA(s *string) string {
	if s == nil || *s == "" {
		return "N/A"
	}
	return *s
}
