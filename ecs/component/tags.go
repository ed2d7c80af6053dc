package component

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

type CameraTag struct{}

var CameraTagComponent = NewComponent[CameraTag]()

type ReticleTag struct{}

var ReticleTagComponent = NewComponent[ReticleTag]()

type AnchorTag struct{}

var AnchorTagComponent = NewComponent[AnchorTag]()

type SolidTag struct{}

var SolidTagComponent = NewComponent[SolidTag]()
