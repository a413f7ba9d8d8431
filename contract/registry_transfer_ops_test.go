package contract

import (
	"testing"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/stretchr/testify/suite"

	"github.com/saurabh-7797/landnft/landerr"
	"github.com/saurabh-7797/landnft/model"
)

const (
	witness1 = "x509::CN=witness1::CN=ca"
	witness2 = "x509::CN=witness2::CN=ca"
)

type transferSuite struct {
	registrySuite
	titleID uint64
}

func TestTransferSuite(t *testing.T) {
	suite.Run(t, new(transferSuite))
}

func (s *transferSuite) SetupTest() {
	s.newLedger()
	s.bootstrap(model.WorkflowMultiStep)
	s.titleID = s.mintTo("K123", seller)
}

func (s *transferSuite) addWitness(caller string, transferID uint64, witness string, side model.WitnessSide) error {
	return s.as(caller, func(ctx contractapi.TransactionContextInterface) error {
		if side == model.SellerSide {
			return s.cc.AddSellerWitness(ctx, transferID, witness)
		}
		return s.cc.AddBuyerWitness(ctx, transferID, witness)
	})
}

func (s *transferSuite) approveAsWitness(caller string, transferID uint64, side model.WitnessSide) error {
	return s.as(caller, func(ctx contractapi.TransactionContextInterface) error {
		if side == model.SellerSide {
			return s.cc.ApproveAsSellerWitness(ctx, transferID)
		}
		return s.cc.ApproveAsBuyerWitness(ctx, transferID)
	})
}

func (s *transferSuite) approve(caller string, transferID uint64) error {
	return s.as(caller, func(ctx contractapi.TransactionContextInterface) error {
		return s.cc.ApproveTransfer(ctx, transferID)
	})
}

func (s *transferSuite) reject(caller string, transferID uint64, reason string) error {
	return s.as(caller, func(ctx contractapi.TransactionContextInterface) error {
		return s.cc.RejectTransfer(ctx, transferID, reason)
	})
}

func (s *transferSuite) witnessRequirementsMet(transferID uint64) bool {
	met, err := s.cc.AreWitnessRequirementsMet(s.query(), transferID)
	s.Require().NoError(err)
	return met
}

func (s *transferSuite) TestTransferWithoutWitnesses() {
	id := s.mustInitiate(s.titleID, seller, buyer, false, false)
	s.Equal(uint64(0), id)

	t := s.getTransfer(id)
	s.Equal(model.TransferPending, t.Status)
	s.Equal(seller, t.CurrentOwner)
	s.Equal(buyer, t.NewOwner)
	s.Contains(s.getOwner(seller).TransferIDs, id)
	s.Contains(s.getOwner(buyer).TransferIDs, id)

	live, err := s.cc.GetLiveTransferForTitle(s.query(), s.titleID)
	s.Require().NoError(err)
	s.Equal(id, live.ID)

	s.Require().NoError(s.verifyTransfer(id, allFlagsOK))
	t = s.getTransfer(id)
	s.Equal(model.TransferVerified, t.Status)
	s.True(t.ClerkVerified)
	s.Equal(s.officials[clerk], t.VerifiedBy)

	s.Require().NoError(s.approve(tehsildar, id))
	t = s.getTransfer(id)
	s.Equal(model.TransferCompleted, t.Status)
	s.True(t.TehsildarVerified)
	s.Equal(s.officials[tehsildar], t.ApprovedBy)
	s.False(t.CompletedAt.IsZero())

	title := s.getTitle(s.titleID)
	s.Equal(buyer, title.Owner)
	s.Equal(uint64(1), title.TransferCount)
	s.Equal(id, title.LastTransferID)
	s.Empty(s.getOwner(seller).TitleIDs)
	s.Equal([]uint64{s.titleID}, s.getOwner(buyer).TitleIDs)

	owner, err := s.cc.GetTitleOwner(s.query(), s.titleID)
	s.Require().NoError(err)
	s.Equal(buyer, owner)

	titles, err := s.cc.GetOwnerTitles(s.query(), buyer)
	s.Require().NoError(err)
	s.Equal([]uint64{s.titleID}, titles)
	transfers, err := s.cc.GetOwnerTransfers(s.query(), seller)
	s.Require().NoError(err)
	s.Equal([]uint64{id}, transfers)
	drafts, err := s.cc.GetOwnerDrafts(s.query(), seller)
	s.Require().NoError(err)
	s.Equal([]uint64{0}, drafts)
	_, err = s.cc.GetOwnerTitles(s.query(), outsider)
	s.ErrorIs(err, landerr.ErrOwnerNotFound)

	text, err := s.cc.GetTransferStatusText(s.query(), id)
	s.Require().NoError(err)
	s.Equal("COMPLETED", text)

	_, err = s.cc.GetLiveTransferForTitle(s.query(), s.titleID)
	s.ErrorIs(err, landerr.ErrTransferNotFound)

	events, name := s.lastPublished()
	s.Equal("TransferCompleted", name)
	s.Require().Len(events, 2)
	s.Equal("TransferApproved", events[0].Name)
	s.Equal("TransferCompleted", events[1].Name)
}

func (s *transferSuite) TestNewOwnerCanTransferOn() {
	id := s.mustInitiate(s.titleID, seller, buyer, false, false)
	s.Require().NoError(s.verifyTransfer(id, allFlagsOK))
	s.Require().NoError(s.approve(tehsildar, id))

	_, err := s.initiate(s.titleID, seller, buyer, false, false)
	s.ErrorIs(err, landerr.ErrNotTitleOwner)

	back := s.mustInitiate(s.titleID, buyer, seller, false, false)
	s.Equal(uint64(1), back)
	s.Require().NoError(s.verifyTransfer(back, allFlagsOK))
	s.Require().NoError(s.approve(tehsildar, back))

	title := s.getTitle(s.titleID)
	s.Equal(seller, title.Owner)
	s.Equal(uint64(2), title.TransferCount)
	s.Equal(back, title.LastTransferID)
	s.Equal([]uint64{s.titleID}, s.getOwner(seller).TitleIDs)
	s.Empty(s.getOwner(buyer).TitleIDs)

	err = s.addWitness(seller, id, witness1, model.SellerSide)
	s.ErrorIs(err, landerr.ErrTransferNotPending)
}

func (s *transferSuite) TestInitiateTransferGuards() {
	cases := []struct {
		name    string
		caller  string
		titleID uint64
		to      string
		want    *landerr.Error
	}{
		{"unknown title", seller, 99, buyer, landerr.ErrTitleNotFound},
		{"caller does not hold the title", buyer, s.titleID, seller, landerr.ErrNotTitleOwner},
		{"transfer to self", seller, s.titleID, seller, landerr.ErrInvalidNewOwner},
		{"empty new owner", seller, s.titleID, " ", landerr.ErrInvalidNewOwner},
		{"unregistered new owner", seller, s.titleID, outsider, landerr.ErrOwnerNotRegistered},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.initiate(tc.titleID, tc.caller, tc.to, false, false)
			s.ErrorIs(err, tc.want)
		})
	}
	s.Empty(s.counter(transferCounter))
	s.Empty(s.getOwner(seller).TransferIDs)

	s.Run("bad document hash", func() {
		err := s.as(seller, func(ctx contractapi.TransactionContextInterface) error {
			_, err := s.cc.InitiateTransfer(ctx, s.titleID, buyer, "12 Mall Road", "RESIDENTIAL", "QmShort", false, false)
			return err
		})
		s.ErrorIs(err, landerr.ErrInvalidDocumentHashLength)
	})
}

func (s *transferSuite) TestVerificationFlags() {
	id := s.mustInitiate(s.titleID, seller, buyer, false, false)

	cases := []struct {
		name  string
		unset func(f *model.VerificationFlags)
		want  *landerr.Error
	}{
		{"loan", func(f *model.VerificationFlags) { f.NoLoan = false }, landerr.ErrLoanExists},
		{"dispute", func(f *model.VerificationFlags) { f.NoDispute = false }, landerr.ErrDisputeExists},
		{"mortgage", func(f *model.VerificationFlags) { f.NoMortgage = false }, landerr.ErrMortgageExists},
		{"title", func(f *model.VerificationFlags) { f.TitleVerified = false }, landerr.ErrTitleNotVerified},
		{"documents", func(f *model.VerificationFlags) { f.DocumentsAuthentic = false }, landerr.ErrDocumentsNotAuthentic},
		{"taxes", func(f *model.VerificationFlags) { f.NoOutstandingTaxes = false }, landerr.ErrOutstandingTaxes},
		{"encumbrances", func(f *model.VerificationFlags) { f.NoLegalEncumbrances = false }, landerr.ErrLegalEncumbrances},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			flags := allFlagsOK
			tc.unset(&flags)
			err := s.verifyTransfer(id, flags)
			s.ErrorIs(err, tc.want)
			s.ErrorIs(err, landerr.ErrVerificationFailed)
			s.Equal(model.TransferPending, s.getTransfer(id).Status)
		})
	}

	s.Run("first failing flag wins", func() {
		err := s.verifyTransfer(id, model.VerificationFlags{})
		s.ErrorIs(err, landerr.ErrLoanExists)
	})

	s.Run("only clerks verify", func() {
		err := s.as(tehsildar, func(ctx contractapi.TransactionContextInterface) error {
			return s.cc.VerifyTransfer(ctx, id, allFlagsOK)
		})
		s.ErrorIs(err, landerr.ErrUnauthorized)
	})

	s.Require().NoError(s.verifyTransfer(id, allFlagsOK))
	s.ErrorIs(s.verifyTransfer(id, allFlagsOK), landerr.ErrTransferNotPending)
}

func (s *transferSuite) TestWitnessGate() {
	id := s.mustInitiate(s.titleID, seller, buyer, true, true)
	s.True(s.witnessRequirementsMet(id), "no named witnesses means nothing to wait for")

	s.Require().NoError(s.addWitness(seller, id, witness1, model.SellerSide))
	s.False(s.witnessRequirementsMet(id))
	s.ErrorIs(s.verifyTransfer(id, allFlagsOK), landerr.ErrSellerWitnessApprovalPending)

	s.Require().NoError(s.approveAsWitness(witness1, id, model.SellerSide))
	s.True(s.witnessRequirementsMet(id))

	s.Require().NoError(s.addWitness(buyer, id, witness2, model.BuyerSide))
	s.False(s.witnessRequirementsMet(id))
	err := s.verifyTransfer(id, allFlagsOK)
	s.ErrorIs(err, landerr.ErrBuyerWitnessApprovalPending)
	s.ErrorIs(err, landerr.ErrWitnessRequirementNotMet)

	s.Require().NoError(s.approveAsWitness(witness2, id, model.BuyerSide))
	s.True(s.witnessRequirementsMet(id))
	s.Require().NoError(s.verifyTransfer(id, allFlagsOK))

	approved, err := s.cc.GetWitnessApproval(s.query(), id, witness2)
	s.Require().NoError(err)
	s.True(approved)

	approvals, err := s.cc.GetWitnessApprovals(s.query(), id)
	s.Require().NoError(err)
	s.Require().Len(approvals, 2)
	sides := map[string]model.WitnessSide{}
	for _, a := range approvals {
		sides[a.Witness] = a.Side
	}
	s.Equal(model.SellerSide, sides[witness1])
	s.Equal(model.BuyerSide, sides[witness2])
}

func (s *transferSuite) TestUnrequiredSideIsIgnored() {
	id := s.mustInitiate(s.titleID, seller, buyer, false, true)
	s.Require().NoError(s.addWitness(seller, id, witness1, model.SellerSide))
	s.True(s.witnessRequirementsMet(id))
	s.Require().NoError(s.verifyTransfer(id, allFlagsOK))
}

func (s *transferSuite) TestUpdateWitnessRequirements() {
	id := s.mustInitiate(s.titleID, seller, buyer, true, false)
	s.Require().NoError(s.addWitness(seller, id, witness1, model.SellerSide))
	s.ErrorIs(s.verifyTransfer(id, allFlagsOK), landerr.ErrSellerWitnessApprovalPending)

	err := s.as(buyer, func(ctx contractapi.TransactionContextInterface) error {
		return s.cc.UpdateWitnessRequirements(ctx, id, false, false)
	})
	s.ErrorIs(err, landerr.ErrNotSeller)

	s.Require().NoError(s.as(seller, func(ctx contractapi.TransactionContextInterface) error {
		return s.cc.UpdateWitnessRequirements(ctx, id, false, false)
	}))
	t := s.getTransfer(id)
	s.False(t.RequireSellerWitness)
	s.False(t.RequireBuyerWitness)
	s.Require().NoError(s.verifyTransfer(id, allFlagsOK))

	err = s.as(seller, func(ctx contractapi.TransactionContextInterface) error {
		return s.cc.UpdateWitnessRequirements(ctx, id, true, true)
	})
	s.ErrorIs(err, landerr.ErrTransferNotPending)
}

func (s *transferSuite) TestWitnessGuards() {
	id := s.mustInitiate(s.titleID, seller, buyer, true, true)

	s.ErrorIs(s.addWitness(buyer, id, witness1, model.SellerSide), landerr.ErrNotSeller)
	s.ErrorIs(s.addWitness(seller, id, witness1, model.BuyerSide), landerr.ErrNotBuyer)
	s.ErrorIs(s.addWitness(outsider, id, witness1, model.SellerSide), landerr.ErrNotSeller)
	s.ErrorIs(s.addWitness(seller, id, " ", model.SellerSide), landerr.ErrZeroIdentity)
	s.ErrorIs(s.addWitness(seller, id, buyer, model.SellerSide), landerr.ErrInvalidWitness)
	s.ErrorIs(s.addWitness(buyer, id, seller, model.BuyerSide), landerr.ErrInvalidWitness)
	s.ErrorIs(s.addWitness(seller, 42, witness1, model.SellerSide), landerr.ErrTransferNotFound)

	s.Require().NoError(s.addWitness(seller, id, witness1, model.SellerSide))
	s.ErrorIs(s.addWitness(seller, id, witness1, model.SellerSide), landerr.ErrWitnessAlreadyAdded)
	s.ErrorIs(s.addWitness(buyer, id, witness1, model.BuyerSide), landerr.ErrWitnessAlreadyAdded)
	s.Equal([]string{witness1}, s.getTransfer(id).SellerWitnesses)
	s.Empty(s.getTransfer(id).BuyerWitnesses)

	s.ErrorIs(s.approveAsWitness(witness2, id, model.SellerSide), landerr.ErrNotAWitness)
	s.ErrorIs(s.approveAsWitness(witness1, id, model.BuyerSide), landerr.ErrNotAWitness)

	s.Require().NoError(s.approveAsWitness(witness1, id, model.SellerSide))
	s.ErrorIs(s.approveAsWitness(witness1, id, model.SellerSide), landerr.ErrWitnessAlreadyApproved)

	approved, err := s.cc.GetWitnessApproval(s.query(), id, witness2)
	s.Require().NoError(err)
	s.False(approved)
}

func (s *transferSuite) TestRegisteredWitnessHistory() {
	s.Require().NoError(s.as(witness1, func(ctx contractapi.TransactionContextInterface) error {
		return s.cc.RegisterWitness(ctx, "Ravi", "", "neighbour")
	}))

	id := s.mustInitiate(s.titleID, seller, buyer, true, false)
	s.Require().NoError(s.addWitness(seller, id, witness1, model.SellerSide))
	s.Require().NoError(s.approveAsWitness(witness1, id, model.SellerSide))

	w, err := s.cc.GetWitness(s.query(), witness1)
	s.Require().NoError(err)
	s.Equal([]uint64{id}, w.WitnessedTransferIDs)
	s.Equal([]uint64{s.titleID}, w.WitnessedTitleIDs)

	_, err = s.cc.GetWitness(s.query(), witness2)
	s.ErrorIs(err, landerr.ErrWitnessNotFound)
}

func (s *transferSuite) TestNewInitiationSupersedesLiveRequest() {
	first := s.mustInitiate(s.titleID, seller, buyer, false, false)
	s.Require().NoError(s.verifyTransfer(first, allFlagsOK))

	second := s.mustInitiate(s.titleID, seller, buyer, true, false)
	s.NotEqual(first, second)

	events, name := s.lastPublished()
	s.Equal("TransferInitiated", name)
	s.Require().Len(events, 2)
	s.Equal("TransferSuperseded", events[0].Name)
	s.Equal("0", events[0].Refs["transferId"])
	s.Equal("1", events[0].Refs["supersededBy"])

	stale := s.getTransfer(first)
	s.True(stale.Superseded)
	s.Equal(second, stale.SupersededBy)
	s.Equal(model.TransferVerified, stale.Status)
	s.False(s.getTransfer(second).Superseded)

	live, err := s.cc.GetLiveTransferForTitle(s.query(), s.titleID)
	s.Require().NoError(err)
	s.Equal(second, live.ID)

	s.ErrorIs(s.approve(tehsildar, first), landerr.ErrTransferNotLive)
	s.Equal(model.TransferVerified, s.getTransfer(first).Status)

	s.Require().NoError(s.verifyTransfer(second, allFlagsOK))
	s.Require().NoError(s.approve(tehsildar, second))
	s.Equal(buyer, s.getTitle(s.titleID).Owner)

	s.Run("superseded pending requests reject witness operations", func() {
		titleID := s.mintTo("K456", seller)
		stale := s.mustInitiate(titleID, seller, buyer, true, false)
		s.mustInitiate(titleID, seller, buyer, true, false)

		s.ErrorIs(s.addWitness(seller, stale, witness1, model.SellerSide), landerr.ErrTransferNotLive)
		s.ErrorIs(s.verifyTransfer(stale, allFlagsOK), landerr.ErrTransferNotLive)
	})
}

func (s *transferSuite) TestRejectTransfer() {
	id := s.mustInitiate(s.titleID, seller, buyer, false, false)

	s.ErrorIs(s.reject(tehsildar, id, "missing stamp duty"), landerr.ErrTransferNotVerified)
	s.Require().NoError(s.verifyTransfer(id, allFlagsOK))

	s.ErrorIs(s.reject(clerk, id, "missing stamp duty"), landerr.ErrUnauthorized)
	s.ErrorIs(s.reject(tehsildar, id, ""), landerr.ErrEmptyReason)

	s.Require().NoError(s.reject(tehsildar, id, "missing stamp duty"))
	t := s.getTransfer(id)
	s.Equal(model.TransferRejected, t.Status)
	s.Equal("missing stamp duty", t.RejectionReason)
	s.Equal(s.officials[tehsildar], t.RejectedBy)

	events, _ := s.lastPublished()
	s.Equal("missing stamp duty", events[0].Reason)

	_, err := s.cc.GetLiveTransferForTitle(s.query(), s.titleID)
	s.ErrorIs(err, landerr.ErrTransferNotFound)
	s.ErrorIs(s.approve(tehsildar, id), landerr.ErrTransferNotVerified)
	s.Equal(seller, s.getTitle(s.titleID).Owner)

	s.Equal(uint64(1), s.mustInitiate(s.titleID, seller, buyer, false, false))
}

func (s *transferSuite) TestRejectingSupersededRequestKeepsLivePointer() {
	first := s.mustInitiate(s.titleID, seller, buyer, false, false)
	s.Require().NoError(s.verifyTransfer(first, allFlagsOK))
	second := s.mustInitiate(s.titleID, seller, buyer, false, false)

	s.Require().NoError(s.reject(tehsildar, first, "superseded"))

	live, err := s.cc.GetLiveTransferForTitle(s.query(), s.titleID)
	s.Require().NoError(err)
	s.Equal(second, live.ID)
}

func (s *transferSuite) TestApproveTransferDetectsOwnershipMismatch() {
	id := s.mustInitiate(s.titleID, seller, buyer, false, false)
	s.Require().NoError(s.verifyTransfer(id, allFlagsOK))

	s.ErrorIs(s.approve(clerk, id), landerr.ErrUnauthorized)

	tampered := s.getTitle(s.titleID)
	tampered.Owner = outsider
	s.putRaw(titleObjectType, []string{idAttr(s.titleID)}, tampered)

	s.ErrorIs(s.approve(tehsildar, id), landerr.ErrOwnershipMismatch)
	s.Equal(model.TransferVerified, s.getTransfer(id).Status)
	s.Equal([]uint64{s.titleID}, s.getOwner(seller).TitleIDs)
	s.Empty(s.getOwner(buyer).TitleIDs)
}
