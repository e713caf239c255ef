package statusmirror

import (
	"context"
	"fmt"
	"time"
)

// DepositSnapshot is the document written to Firestore for one deposit
// status transition, at path
// chains/{chainName}/deposits/{depositID}/statusSnapshots/{snapshotID}.
type DepositSnapshot struct {
	DepositID  string    `firestore:"depositId"`
	ChainName  string    `firestore:"chainName"`
	Status     string    `firestore:"status"`
	L1TxHash   string    `firestore:"l1TxHash,omitempty"`
	L2TxHash   string    `firestore:"l2TxHash,omitempty"`
	Error      string    `firestore:"error,omitempty"`
	ObservedAt time.Time `firestore:"observedAt"`
}

// RedemptionSnapshot mirrors DepositSnapshot for redemption transitions.
type RedemptionSnapshot struct {
	RedemptionID string    `firestore:"redemptionId"`
	ChainName    string    `firestore:"chainName"`
	Status       string    `firestore:"status"`
	L1TxHash     string    `firestore:"l1TxHash,omitempty"`
	L2TxHash     string    `firestore:"l2TxHash,omitempty"`
	Error        string    `firestore:"error,omitempty"`
	ObservedAt   time.Time `firestore:"observedAt"`
}

// MirrorDeposit writes a deposit status snapshot. A failure here never
// blocks the caller's own transition: it is logged and swallowed, since
// Firestore mirroring is a best-effort UI convenience, not part of the
// relayer's source of truth.
func (c *Client) MirrorDeposit(ctx context.Context, snap DepositSnapshot) {
	if !c.IsEnabled() {
		return
	}
	snapshotID := fmt.Sprintf("%s_%d", snap.Status, snap.ObservedAt.UnixNano())
	docPath := fmt.Sprintf("chains/%s/deposits/%s/statusSnapshots/%s", snap.ChainName, snap.DepositID, snapshotID)
	if _, err := c.firestore.Doc(docPath).Set(ctx, snap); err != nil {
		c.logger.Printf("mirror deposit %s: %v", snap.DepositID, err)
	}
}

// MirrorRedemption writes a redemption status snapshot.
func (c *Client) MirrorRedemption(ctx context.Context, snap RedemptionSnapshot) {
	if !c.IsEnabled() {
		return
	}
	snapshotID := fmt.Sprintf("%s_%d", snap.Status, snap.ObservedAt.UnixNano())
	docPath := fmt.Sprintf("chains/%s/redemptions/%s/statusSnapshots/%s", snap.ChainName, snap.RedemptionID, snapshotID)
	if _, err := c.firestore.Doc(docPath).Set(ctx, snap); err != nil {
		c.logger.Printf("mirror redemption %s: %v", snap.RedemptionID, err)
	}
}
